package normalize

// Rule maps raw class names to a canonical category by substring
// matching against the lower-cased name. Rules are evaluated in order
// and the first match wins, so overlapping predicates (for example
// "express back" vs. plain "back") must stay in their current order.
type Rule struct {
	Name string
	// All terms must be present.
	All []string
	// At least one of these terms must be present.
	Any []string
	// None of these terms may be present.
	None     []string
	Category string
}

// Canonical categories that are not tied to a single rule.
const (
	CategoryUncategorized = "Uncategorized"
	CategoryInvalid       = "Invalid"
	CategoryHosted        = "Studio Hosted Class"
)

// DefaultRules returns the ordered rule table used to clean class names
// from payroll exports. The order is load-bearing.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "amped", All: []string{"amped"}, Category: "Studio Amped Up!"},
		{Name: "hosted-markers", Any: []string{"hosted", "bridal shower class!", "sign up link", "hc"}, Category: CategoryHosted},
		{Name: "kitab-mahal-popup", All: []string{"please see pop up @ kitab mahal"}, Category: "Outdoor Class"},
		{Name: "not-applicable", All: []string{"n/a"}, Category: CategoryInvalid},
		{Name: "back-body-blaze-express", All: []string{"express", "back"}, Category: "Studio Back Body Blaze Express"},
		{Name: "back-body-blaze", All: []string{"back"}, None: []string{"express"}, Category: "Studio Back Body Blaze"},
		{Name: "barre-57", All: []string{"barre 57"}, None: []string{"express"}, Category: "Studio Barre 57"},
		{Name: "barre-57-express", All: []string{"express", "barre 57"}, Category: "Studio Barre 57 Express"},
		{Name: "cardio-barre", All: []string{"cardio"}, None: []string{"express"}, Category: "Studio Cardio Barre"},
		{Name: "cardio-barre-express", All: []string{"express", "cardio"}, Category: "Studio Cardio Barre Express"},
		{Name: "mat-57", All: []string{"mat"}, None: []string{"express"}, Category: "Studio Mat 57"},
		{Name: "mat-57-express", All: []string{"express", "mat"}, Category: "Studio Mat 57 Express"},
		{Name: "hiit", All: []string{"hiit"}, None: []string{"express"}, Category: "Studio HIIT"},
		{Name: "hiit-express", All: []string{"express", "hiit"}, Category: "Studio HIIT Express"},
		{Name: "foundations", All: []string{"foundation"}, None: []string{"express"}, Category: "Studio Foundations"},
		{Name: "foundations-express", All: []string{"express", "foundation"}, Category: "Studio Foundations Express"},
		{Name: "fit", All: []string{"fit"}, None: []string{"express"}, Category: "Studio FIT"},
		{Name: "fit-express", All: []string{"express", "fit"}, Category: "Studio FIT Express"},
		{Name: "trainers-choice", All: []string{"trainer"}, None: []string{"express"}, Category: "Studio Trainers Choice"},
		{Name: "trainers-choice-express", All: []string{"express", "trainer"}, Category: "Studio Trainers Choice Express"},
		{Name: "sweat-in-30", All: []string{"sweat"}, Category: "Studio Sweat in 30"},
		{Name: "recovery", All: []string{"recovery"}, Category: "Studio Recovery"},
		{Name: "hosted-collab", Any: []string{"p57 x", "physique 57 x", "x physique 57", "birthday", "sundowner", "bridal"}, Category: CategoryHosted},
		{Name: "powercycle-express", All: []string{"powercycle", "express"}, Category: "Studio powerCycle Express"},
		{Name: "powercycle", All: []string{"powercycle"}, Category: "Studio powerCycle"},
		{Name: "one-off-events", Any: []string{"studio pre/post natal class", "olympics finale", "pop up class at raheja vivarea", "bangalore rugby club x physique 57"}, Category: "Others"},
		{Name: "flex-30-single", All: []string{"flex 30 single class"}, Category: "Flex 30 Single Class"},
		{Name: "1-month-unlimited", All: []string{"studio 1 month unlimited"}, Category: "Studio 1 Month Unlimited"},
		{Name: "8-class-package", All: []string{"studio 8 class package"}, Category: "Studio 8 Class Package"},
		{Name: "single-class", All: []string{"studio single class"}, Category: "Studio Single Class"},
		{Name: "12-class-package", All: []string{"studio 12 class package"}, Category: "Studio 12 Class Package"},
		{Name: "4-class-package", All: []string{"studio 4 class package"}, Category: "Studio 4 Class Package"},
		{Name: "open-barre", All: []string{"studio open barre class"}, Category: "Studio Open Barre Class"},
		{Name: "2-week-unlimited", All: []string{"studio 2 week unlimited"}, Category: "Studio 2 Week Unlimited"},
		{Name: "complimentary", All: []string{"studio complimentary class"}, Category: "Studio Complimentary Class"},
		{Name: "free-influencer", All: []string{"studio free influencer class"}, Category: "Studio Free Influencer Class"},
		{Name: "newcomers-2-week", All: []string{"studio newcomers 2 week unlimited"}, Category: "Studio Newcomers 2 Week Unlimited"},
		{Name: "annual-unlimited", All: []string{"studio annual unlimited"}, Category: "Studio Annual Unlimited"},
		{Name: "outdoor-complimentary", All: []string{"outdoor complimentary class"}, Category: "Outdoor Complimentary Class"},
		{Name: "community-barre", All: []string{"studio community barre"}, Category: "Studio Community Barre"},
		{Name: "sunrise", All: []string{"sunrise class"}, Category: "SUNRISE CLASS"},
		{Name: "virtual-private-apt", All: []string{"virtual private apt"}, Category: "Virtual Private Apt"},
		{Name: "studio-private-apt", All: []string{"studio private apt"}, Category: "Studio Private Apt"},
		{Name: "open-barre-complimentary", All: []string{"open barre complimentary class"}, Category: "OPEN BARRE CLASS"},
		{Name: "ff-class-test", All: []string{"ff class test"}, Category: "FF CLASS TEST"},
		{Name: "open-barre-fallback", All: []string{"open barre class"}, Category: "OPEN BARRE CLASS"},
	}
}
