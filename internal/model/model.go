package model

// Category is a question's clinical category. The set is closed and comes
// from the source exam data.
type Category string

const (
	CategoryAncillary     Category = "Ancillary"
	CategoryBasicScience  Category = "Basic Science"
	CategoryBoneAndJoint  Category = "Bone and Joint"
	CategoryMisc          Category = "Misc"
	CategoryNeuromuscular Category = "Neuromuscular"
	CategorySkin          Category = "Skin"
	CategoryUnspecified   Category = "Unspecified"
	CategoryVascular      Category = "Vascular"
)

// Categories returns all categories in their canonical iteration order.
func Categories() []Category {
	return []Category{
		CategoryAncillary,
		CategoryBasicScience,
		CategoryBoneAndJoint,
		CategoryMisc,
		CategoryNeuromuscular,
		CategorySkin,
		CategoryUnspecified,
		CategoryVascular,
	}
}

// ParseCategory maps a source-data tag to a Category.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories() {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// MediaType is the kind of a media asset.
type MediaType string

const (
	MediaImage MediaType = "Image"
	MediaVideo MediaType = "Video"
)

// ContentType classifies a question (or its commentary) as text-only or
// text-plus-image.
type ContentType string

const (
	ContentText  ContentType = "Text"
	ContentImage ContentType = "Image"
)

// ModelID identifies an inference model endpoint.
type ModelID string

const (
	ModelGPT35           ModelID = "gpt-3.5-turbo-0125"
	ModelGPT4            ModelID = "gpt-4-turbo-2024-04-09"
	ModelGPT4o           ModelID = "gpt-4o"
	ModelFtNoExemplars   ModelID = "ft:gpt-3.5-turbo-1106:personal::8qxFN6cX"
	ModelFtWithExemplars ModelID = "ft:gpt-3.5-turbo-1106:personal::8qxNawaE"
)

// SupportsImages reports whether the model accepts image content parts.
func (m ModelID) SupportsImages() bool {
	switch m {
	case ModelGPT4, ModelGPT4o:
		return true
	}
	return false
}

// Experiment names one evaluation arm: the human control or a specific
// model + prompting-strategy combination.
type Experiment string

const (
	ExperimentHuman             Experiment = "human"
	ExperimentGPT35             Experiment = "gpt3.5"
	ExperimentGPT4              Experiment = "gpt4"
	ExperimentGPT4o             Experiment = "gpt4o"
	ExperimentGPT4oFewShot      Experiment = "gpt4o-better-prompt"
	ExperimentFileSearch        Experiment = "gpt4-file-search"
	ExperimentFileSearchFewShot Experiment = "gpt4-file-search-and-better-prompt"
)

// Experiments returns all experiment arms in display order.
func Experiments() []Experiment {
	return []Experiment{
		ExperimentHuman,
		ExperimentGPT35,
		ExperimentGPT4,
		ExperimentGPT4o,
		ExperimentGPT4oFewShot,
		ExperimentFileSearch,
		ExperimentFileSearchFewShot,
	}
}

// Answer sentinels. These are recorded in place of a choice letter and
// scored as incorrect downstream; they are never raised as errors.
const (
	AnswerParseError            = "PARSE_ERROR"
	AnswerExtractionError       = "EXTRACTION_ERROR"
	AnswerExtractionRateLimited = "EXTRACTION_ERROR_RATELIMIT"
	AnswerNone                  = "N/A"
)

// Aggregation verdict sentinels.
const (
	VerdictTie          = "TIE"
	VerdictNotUnanimous = "NOT_UNANIMOUS"
)
