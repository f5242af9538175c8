package spark

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"go.uber.org/zap"

	"github.com/propense/feature-engine/pkg/models"
)

// featureBlock is one engineered feature rendered into the script.
type featureBlock struct {
	Name          string
	Description   string
	Expression    string
	SourceColumns string
	Kind          string
}

type scriptParams struct {
	Features       []featureBlock
	RawColumns     string
	GeneratedCount int
	UserCount      int
	RawCount       int
}

// Assembler renders confirmed feature lists into self-contained Glue
// PySpark scripts. Every derived feature is wrapped in its own guard and
// try/except so a single bad expression cannot fail the whole job.
type Assembler struct {
	translator *Translator
	logger     *zap.Logger
}

// NewAssembler creates a script assembler.
func NewAssembler(translator *Translator, logger *zap.Logger) *Assembler {
	return &Assembler{
		translator: translator,
		logger:     logger.Named("spark-assembler"),
	}
}

// Assemble generates the ETL script for a confirmed feature list. Raw
// features become passthrough columns prefixed with "raw_"; generated and
// user features become withColumn expressions translated from their
// formulas.
func (a *Assembler) Assemble(ctx context.Context, features []models.FeatureCandidate, knownColumns []string) (string, error) {
	var params scriptParams
	var rawNames []string

	for _, f := range features {
		switch f.Provenance {
		case models.ProvenanceRaw:
			rawNames = append(rawNames, f.FeatureName)
			params.RawCount++
			continue
		case models.ProvenanceUser:
			params.UserCount++
		default:
			params.GeneratedCount++
		}

		formula := f.Formula
		if formula == "" {
			formula = f.FeatureName
		}
		params.Features = append(params.Features, featureBlock{
			Name:          pyString(f.FeatureName),
			Description:   pyString(f.Description),
			Expression:    a.translator.Translate(ctx, formula, knownColumns),
			SourceColumns: pyStringList(f.SourceColumns),
			Kind:          string(f.Provenance),
		})
	}
	params.RawColumns = pyStringList(rawNames)

	var out strings.Builder
	if err := scriptTemplate.Execute(&out, params); err != nil {
		return "", fmt.Errorf("render glue script: %w", err)
	}

	a.logger.Info("assembled glue script",
		zap.Int("generated_features", params.GeneratedCount),
		zap.Int("user_features", params.UserCount),
		zap.Int("raw_columns", params.RawCount))
	return out.String(), nil
}

// pyString escapes a value for embedding in a single-quoted python
// string literal.
func pyString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "'", `\'`)
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

func pyStringList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + pyString(v) + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

var scriptTemplate = template.Must(template.New("glue_script").Parse(`import sys
from awsglue.transforms import *
from awsglue.utils import getResolvedOptions
from pyspark.context import SparkContext
from awsglue.context import GlueContext
from awsglue.job import Job
from pyspark.sql import functions as F
from pyspark.sql.types import *
from pyspark.sql.window import Window

args = getResolvedOptions(sys.argv, ['JOB_NAME', 'input_path', 'output_path', 'feature_count'])

sc = SparkContext()
glueContext = GlueContext(sc)
spark = glueContext.spark_session
job = Job(glueContext)
job.init(args['JOB_NAME'], args)

print(f"Starting feature engineering job: {args['JOB_NAME']}")
print(f"Input path: {args['input_path']}")
print(f"Output path: {args['output_path']}")
print(f"Expected features: {args['feature_count']}")

try:
    input_path = args['input_path']
    if input_path.endswith('/'):
        df = spark.read.option("header", "true").option("inferSchema", "true").csv(input_path + "*.csv")
    elif input_path.endswith('.json'):
        df = spark.read.json(input_path)
    elif input_path.endswith('.parquet'):
        df = spark.read.parquet(input_path)
    else:
        df = spark.read.option("header", "true").option("inferSchema", "true").csv(input_path)

    print(f"Successfully loaded data with {df.count()} records and {len(df.columns)} columns")
    print(f"Columns: {df.columns}")
except Exception as e:
    print(f"Error reading input data: {e}")
    raise e


def engineer_features(df):
    """Engineer all confirmed features for propensity models."""
    print("Starting feature engineering...")
    feature_df = df

    date_cols = []
    for col in df.columns:
        if 'date' in col.lower() or 'time' in col.lower():
            try:
                feature_df = feature_df.withColumn(col, F.to_date(F.col(col)))
                date_cols.append(col)
            except Exception:
                pass
    print(f"Date columns processed: {date_cols}")
{{range .Features}}
    # {{.Kind}} feature: {{.Name}} - {{.Description}}
    if all(col in df.columns for col in {{.SourceColumns}}):
        try:
            feature_df = feature_df.withColumn(
                '{{.Name}}',
                {{.Expression}}
            )
            print(f"Successfully created feature: {{.Name}}")
        except Exception as e:
            print(f"Error creating feature {{.Name}}: {e}")
{{end}}
    raw_columns = {{.RawColumns}}
    for col in raw_columns:
        if col in df.columns and col not in feature_df.columns:
            feature_df = feature_df.withColumn(f"raw_{col}", F.col(col))

    print(f"Final feature count: {len(feature_df.columns)}")
    print(f"Final columns: {feature_df.columns}")
    return feature_df


try:
    engineered_df = engineer_features(df)
    engineered_df = engineered_df.withColumn("feature_engineering_timestamp", F.current_timestamp())
    engineered_df = engineered_df.withColumn("job_name", F.lit(args['JOB_NAME']))
    print("Feature engineering completed successfully")
except Exception as e:
    print(f"Error during feature engineering: {e}")
    raise e

try:
    output_path = args['output_path']

    engineered_df.write.mode('overwrite').option("compression", "snappy").parquet(output_path + "/features/")
    engineered_df.write.mode('overwrite').option("header", "true").csv(output_path + "/features_csv/")
    print(f"Successfully wrote engineered features to {output_path}")

    feature_metadata = {
        "job_name": args['JOB_NAME'],
        "input_path": args['input_path'],
        "output_path": output_path,
        "feature_count": len(engineered_df.columns),
        "record_count": engineered_df.count(),
        "features": {
            "llm_generated": {{.GeneratedCount}},
            "user_suggested": {{.UserCount}},
            "raw_columns": {{.RawCount}}
        }
    }
    metadata_df = spark.createDataFrame([feature_metadata])
    metadata_df.write.mode('overwrite').json(output_path + "/metadata/")

    print("Feature engineering job completed successfully")
except Exception as e:
    print(f"Error writing output: {e}")
    raise e

job.commit()
`))
