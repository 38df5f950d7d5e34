package consts

const (
	ImputeBenchName = "imputebench"

	// EnvPrefix prefixes the environment variables read for flag defaults.
	EnvPrefix = "IMPUTEBENCH"
)

// Tags/Dimensions/Labels
const (
	// LabelMetricName carries the series name, the same label prometheus uses for metric names.
	LabelMetricName = "__name__"
	LabelRun        = "run"
	LabelResult     = "result"
	LabelFamily     = "family"
	LabelMethod     = "method"
)
