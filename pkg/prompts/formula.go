package prompts

import (
	"fmt"
	"strings"
)

// BuildFormulaConversionPrompt creates the prompt that converts a natural
// or mathematical formula into a PySpark column expression. knownColumns,
// when non-empty, anchors the model to the real schema.
func BuildFormulaConversionPrompt(formula string, knownColumns []string) string {
	var prompt strings.Builder

	prompt.WriteString("Convert this mathematical formula to a PySpark SQL expression using pyspark.sql.functions (imported as F):\n\n")
	fmt.Fprintf(&prompt, "Formula: %s\n\n", formula)

	if len(knownColumns) > 0 {
		fmt.Fprintf(&prompt, "Available columns: %s\n\n", strings.Join(knownColumns, ", "))
	}

	prompt.WriteString(`Rules:
- Use F.col('column_name') for column references
- Use F.when().otherwise() for conditional logic
- Use standard operators: +, -, *, /, %, ==, !=, <, >, <=, >=
- Use F.lit() for literal values
- Use parentheses for proper precedence
- Return only the PySpark expression, no explanation

Example conversions:
- "age + 5" → "F.col('age') + 5"
- "if status == 'active' then 1 else 0" → "F.when(F.col('status') == 'active', 1).otherwise(0)"
- "calls / tenure" → "F.col('calls') / F.col('tenure')"

PySpark expression:`)

	return prompt.String()
}
