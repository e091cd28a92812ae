// Package config loads the experiments manifest: which arms to run, with
// which model, strategy, and ensembling, plus the input table locations.
package config

// Strategy names for an experiment arm.
const (
	StrategyZeroShot   = "zero-shot"
	StrategyFewShot    = "few-shot"
	StrategyFileSearch = "file-search"
)

type Config struct {
	Version int         `yaml:"version"`
	Paths   PathsConfig `yaml:"paths"`
	API     APIConfig   `yaml:"api"`
	Arms    []ArmConfig `yaml:"arms"`
}

// PathsConfig points at the externally supplied tables and output roots.
type PathsConfig struct {
	Questions      string `yaml:"questions"`
	Media          string `yaml:"media"`
	References     string `yaml:"references"`
	ReferenceTexts string `yaml:"reference_texts"`
	HumanAnswers   string `yaml:"human_answers"`
	AnswerKey      string `yaml:"answer_key"`
	OutputDir      string `yaml:"output_dir"`
	Ledger         string `yaml:"ledger"`
}

type APIConfig struct {
	BaseURL string `yaml:"base_url"`
}

// ArmConfig describes one experiment arm. File-search arms run through a
// pre-provisioned assistant and need its id. Few-shot arms draw their
// exemplars from a separate training year, never from the eval years.
type ArmConfig struct {
	Name         string `yaml:"name"`
	Model        string `yaml:"model"`
	Strategy     string `yaml:"strategy"`
	AssistantID  string `yaml:"assistant_id"`
	Ensembling   int    `yaml:"ensembling"`
	Exemplars    int    `yaml:"exemplars"`
	ExemplarYear int    `yaml:"exemplar_year"`
	Years        []int  `yaml:"years"`
}
