package models

// Preset is a quick-pick button on the form: a display label and the
// already-normalized value it fills in.
type Preset struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Example is a fully worked campaign configuration users can load in one click.
type Example struct {
	Name     string `json:"name"`
	BaseURL  string `json:"base_url"`
	Source   string `json:"source"`
	Medium   string `json:"medium"`
	Campaign string `json:"campaign"`
	Content  string `json:"content,omitempty"`
}

var SourcePresets = []Preset{
	{Label: "LinkedIn", Value: "linkedin"},
	{Label: "Email", Value: "email"},
	{Label: "Newsletter", Value: "newsletter"},
	{Label: "Twitter/X", Value: "twitter"},
	{Label: "YouTube", Value: "youtube"},
	{Label: "Instagram", Value: "instagram"},
	{Label: "Signature Email", Value: "signature-email"},
}

var MediumPresets = []Preset{
	{Label: "Social Organique", Value: "social_organic"},
	{Label: "Social Payant", Value: "social_paid"},
	{Label: "Email", Value: "email"},
	{Label: "Newsletter", Value: "newsletter"},
	{Label: "CPC", Value: "cpc"},
	{Label: "Display", Value: "display"},
	{Label: "Banner", Value: "banner"},
	{Label: "Referral", Value: "referral"},
}

var Examples = []Example{
	{
		Name:     "LinkedIn - Post Blog",
		BaseURL:  "https://avisia.fr/actualites/blog/data/article-ia",
		Source:   "linkedin",
		Medium:   "social_organic",
		Campaign: "blog-data-ia-nov2024",
		Content:  "post-carrousel",
	},
	{
		Name:     "Newsletter Mensuelle",
		BaseURL:  "https://avisia.fr/expertises/formations",
		Source:   "newsletter",
		Medium:   "email",
		Campaign: "newsletter-oct2024",
		Content:  "cta-formation",
	},
	{
		Name:     "LinkedIn Ads - Recrutement",
		BaseURL:  "https://avisia.fr/carriere/offres-emploi",
		Source:   "linkedin",
		Medium:   "social_paid",
		Campaign: "recrutement-q4-2024",
		Content:  "visuel-equipe",
	},
}
