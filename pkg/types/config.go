package types

// ExtractionBackend identifies the tool that turns the PDF into page text.
type ExtractionBackend string

const (
	BackendNative    ExtractionBackend = "native"
	BackendPdftotext ExtractionBackend = "pdftotext"
	BackendText      ExtractionBackend = "text"
)

// ExtractionConfig holds settings for the page stream reader.
type ExtractionConfig struct {
	// Backend selects the extraction tool: native, pdftotext, or text.
	Backend ExtractionBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// NoisePatterns are regular expressions removed from every page before
	// segmentation (page footers, print stamps).
	NoisePatterns []string `json:"noise_patterns" yaml:"noise_patterns" mapstructure:"noise_patterns"`
}

// SegmentConfig holds the layout vocabulary the segmentation engine
// recognizes. Changing the source document's wording is a config change.
type SegmentConfig struct {
	// Categories is the closed vocabulary of subject-matter labels.
	Categories []string `json:"categories" yaml:"categories" mapstructure:"categories"`

	// MultipleChoiceLabel and YesNoLabel are the kind banners printed
	// above each run (e.g. "選擇題", "是非題").
	MultipleChoiceLabel string `json:"multiple_choice_label" yaml:"multiple_choice_label" mapstructure:"multiple_choice_label"`
	YesNoLabel          string `json:"yes_no_label" yaml:"yes_no_label" mapstructure:"yes_no_label"`

	// YesNoMarkers are the two answer tokens of yes/no questions.
	YesNoMarkers []string `json:"yes_no_markers" yaml:"yes_no_markers" mapstructure:"yes_no_markers"`

	// BannerPattern matches the table title row that precedes every run.
	BannerPattern string `json:"banner_pattern" yaml:"banner_pattern" mapstructure:"banner_pattern"`

	// ReferencePattern matches the optional legal citation trailing a question.
	ReferencePattern string `json:"reference_pattern" yaml:"reference_pattern" mapstructure:"reference_pattern"`

	// LineAnchored requires question numerals to start a line.
	LineAnchored bool `json:"line_anchored" yaml:"line_anchored" mapstructure:"line_anchored"`
}

// DeckConfig holds settings for the flashcard package.
type DeckConfig struct {
	// TitlePrefix is prepended to the generation date to form the deck name.
	TitlePrefix string `json:"title_prefix" yaml:"title_prefix" mapstructure:"title_prefix"`

	// DatePattern finds the generation date on the first page. The date is
	// taken from the named group "date".
	DatePattern string `json:"date_pattern" yaml:"date_pattern" mapstructure:"date_pattern"`

	DeckID       int64  `json:"deck_id" yaml:"deck_id" mapstructure:"deck_id"`
	ModelID      int64  `json:"model_id" yaml:"model_id" mapstructure:"model_id"`
	ModelName    string `json:"model_name" yaml:"model_name" mapstructure:"model_name"`
	TemplateName string `json:"template_name" yaml:"template_name" mapstructure:"template_name"`
	CSS          string `json:"css" yaml:"css" mapstructure:"css"`
}

// Config groups all stage configurations.
type Config struct {
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction" mapstructure:"extraction"`
	Segment    SegmentConfig    `json:"segment" yaml:"segment" mapstructure:"segment"`
	Deck       DeckConfig       `json:"deck" yaml:"deck" mapstructure:"deck"`
}

// DefaultConfig returns the settings matching the procurement-law quiz
// published by the Public Construction Commission.
func DefaultConfig() Config {
	return Config{
		Extraction: ExtractionConfig{
			Backend: BackendNative,
		},
		Segment: SegmentConfig{
			Categories: []string{
				"政府採購全生命週期概論",
				"政府採購法之總則、招標及決標",
				"政府採購法之罰則及附則",
				"政府採購法之履約管理及驗收",
				"政府採購法之爭議處理",
				"底價及價格分析",
				"投標須知及招標文件製作",
				"採購契約",
				"最有利標及評選優勝廠商",
				"電子採購實務",
				"工程及技術服務採購作業",
				"財物及勞務採購作業",
				"錯誤採購態樣",
				"道德規範及違法處置",
			},
			MultipleChoiceLabel: "選擇題",
			YesNoLabel:          "是非題",
			YesNoMarkers:        []string{"O", "X"},
			BannerPattern:       `編\n號答\n案試題( 依據法源)?\n`,
			ReferencePattern:    `第\s*\d+\s*條(?:之\d+)?|綜合`,
			LineAnchored:        true,
		},
		Deck: DeckConfig{
			TitlePrefix:  "採購法題庫_",
			DatePattern:  `(?m)資料產生日期：(?P<date>.+?)\s*$`,
			DeckID:       1614529274,
			ModelID:      1472238217,
			ModelName:    "採購法",
			TemplateName: "GPA Quiz",
			CSS:          ".card{background: #EAFFD0; font-size: 4vh;}",
		},
	}
}
