// Package spark turns confirmed feature lists into PySpark expressions
// and runnable Glue ETL scripts.
package spark

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/propense/feature-engine/pkg/llm"
	"github.com/propense/feature-engine/pkg/prompts"
)

// NullExpression is the translation of an empty formula.
const NullExpression = "F.lit(None)"

const translationMaxTokens = 200

// Translator converts user- and model-authored formulas into PySpark
// column expressions. Bare column references never reach the LLM, and a
// failed conversion degrades to a column reference rather than an error:
// the generated script isolates any resulting per-feature breakage at
// run time.
type Translator struct {
	client llm.Client
	logger *zap.Logger
}

// NewTranslator creates a formula translator backed by the given LLM
// client.
func NewTranslator(client llm.Client, logger *zap.Logger) *Translator {
	return &Translator{
		client: client,
		logger: logger.Named("spark-translator"),
	}
}

// Translate converts one formula into a PySpark expression. Translations
// are not cached; identical formulas may produce different expressions
// across calls.
func (t *Translator) Translate(ctx context.Context, formula string, knownColumns []string) string {
	trimmed := strings.TrimSpace(formula)
	if trimmed == "" {
		return NullExpression
	}

	// Bare identifiers short-circuit to a column reference.
	if isIdentifier(trimmed) {
		return columnRef(trimmed)
	}

	resp, err := t.client.Complete(ctx, llm.Request{
		Prompt:      prompts.BuildFormulaConversionPrompt(trimmed, knownColumns),
		MaxTokens:   translationMaxTokens,
		Temperature: 0,
	})
	if err != nil {
		t.logger.Warn("formula conversion failed, falling back to column reference",
			zap.String("formula", trimmed),
			zap.Error(err))
		return columnRef(trimmed)
	}

	expr := strings.TrimSpace(llm.StripCodeFence(resp))
	if expr == "" {
		t.logger.Warn("formula conversion returned empty expression, falling back to column reference",
			zap.String("formula", trimmed))
		return columnRef(trimmed)
	}
	return expr
}

// isIdentifier reports whether the formula is a plain column name once
// spaces and underscores are ignored.
func isIdentifier(formula string) bool {
	stripped := strings.NewReplacer("_", "", " ", "").Replace(formula)
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		if !isAlphanumeric(r) {
			return false
		}
	}
	return true
}

func isAlphanumeric(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func columnRef(name string) string {
	return fmt.Sprintf("F.col('%s')", strings.TrimSpace(name))
}
