package analyses

// Metrics are the four bounded condition scores derived from the description.
type Metrics struct {
	Moisture    int `json:"moisture" bson:"moisture"`
	Strength    int `json:"strength" bson:"strength"`
	Elasticity  int `json:"elasticity" bson:"elasticity"`
	ScalpHealth int `json:"scalpHealth" bson:"scalpHealth"`
}

// Routine holds the four hair care routine steps.
type Routine struct {
	Cleansing    string `json:"cleansing" bson:"cleansing"`
	Conditioning string `json:"conditioning" bson:"conditioning"`
	Treatments   string `json:"treatments" bson:"treatments"`
	Styling      string `json:"styling" bson:"styling"`
}

// Analysis is the structured form of one vision response. RawAnalysis keeps the
// model text unmodified; every other field has emphasis markers stripped.
type Analysis struct {
	RawAnalysis        string   `json:"rawAnalysis" bson:"rawAnalysis"`
	DetailedAnalysis   string   `json:"detailedAnalysis" bson:"detailedAnalysis"`
	Metrics            Metrics  `json:"metrics" bson:"metrics"`
	HaircareRoutine    Routine  `json:"haircareRoutine" bson:"haircareRoutine"`
	ProductSuggestions []string `json:"productSuggestions" bson:"productSuggestions"`
	AIBonusTips        []string `json:"aiBonusTips" bson:"aiBonusTips"`
}

// UserData is the subset of questionnaire answers that nudges the scores.
type UserData struct {
	PrimaryConcern string
	Allergies      string
	Medications    string
	DyeStatus      string
	WashFrequency  string
}

// Summary is the text shown as the headline analysis.
func (a Analysis) Summary() string {
	if a.DetailedAnalysis != "" {
		return a.DetailedAnalysis
	}
	return StripEmphasis(a.RawAnalysis)
}

// Normalize replaces nil lists with empty ones so stored and rendered records
// always carry arrays.
func (a Analysis) Normalize() Analysis {
	if a.ProductSuggestions == nil {
		a.ProductSuggestions = []string{}
	}
	if a.AIBonusTips == nil {
		a.AIBonusTips = []string{}
	}
	return a
}
