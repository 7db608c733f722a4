package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// Category is a business type or industry type a search is scoped to.
type Category string

// Kind separates specific business types from broader industries.
type Kind int

const (
	KindBusiness Kind = iota
	KindIndustry
)

func (k Kind) String() string {
	if k == KindIndustry {
		return "industry"
	}
	return "business"
}

// Business types.
const (
	Gyms            Category = "Gyms / Fitness Studios"
	SaaSCompanies   Category = "SaaS Companies"
	EcommerceStores Category = "E-commerce Stores"
	MarketingAgency Category = "Marketing Agencies"
	FreelanceDesign Category = "Freelance Designers"
	CoffeeShops     Category = "Coffee Shops / Cafés"
	CourseCreators  Category = "Online Course Creators"
	LocalServiceBiz Category = "Local Service Businesses"
	AppDevelopers   Category = "App Developers"
	Consultants     Category = "Consultants / Coaches"
	JobsAndHiring   Category = "Jobs and Hiring"
)

// Industry types.
const (
	Fitness         Category = "Fitness"
	SaaSTech        Category = "SaaS / Tech"
	Ecommerce       Category = "E-commerce"
	MarketingAds    Category = "Marketing & Advertising"
	Education       Category = "Education / Edtech"
	FoodBeverage    Category = "Food & Beverage"
	LocalServices   Category = "Local Services"
	Finance         Category = "Finance / Fintech"
	Creatives       Category = "Freelancers / Creatives"
	ConsultingCoach Category = "Consulting / Coaching"
)

// BusinessCategories returns business types in canonical order.
func BusinessCategories() []Category {
	return []Category{
		Gyms, SaaSCompanies, EcommerceStores, MarketingAgency, FreelanceDesign,
		CoffeeShops, CourseCreators, LocalServiceBiz, AppDevelopers, Consultants,
		JobsAndHiring,
	}
}

// IndustryCategories returns industry types in canonical order.
func IndustryCategories() []Category {
	return []Category{
		Fitness, SaaSTech, Ecommerce, MarketingAds, Education,
		FoodBeverage, LocalServices, Finance, Creatives, ConsultingCoach,
	}
}

// AllCategories returns every category, businesses first.
func AllCategories() []Category {
	return append(BusinessCategories(), IndustryCategories()...)
}

var categoryKeywords = map[Category][]string{
	Gyms: {
		"gym", "fitness", "trainer", "workout", "members", "membership", "exercise",
		"personal training", "fitness studio", "gym owner", "fitness business",
		"personal trainer", "workout studio", "fitness center", "health club",
	},
	SaaSCompanies: {
		"saas", "software", "app", "application", "platform", "subscription", "mrr", "arr",
		"api", "dashboard", "tech", "startup", "software company", "web app", "mobile app",
		"cloud", "b2b", "enterprise", "integration", "automation",
	},
	EcommerceStores: {
		"ecommerce", "shopify", "amazon", "etsy", "store", "products", "inventory",
		"shipping", "retail", "online store", "dropshipping", "fulfillment", "merchandise",
		"marketplace", "seller", "vendor", "product catalog",
	},
	MarketingAgency: {
		"agency", "client", "campaign", "creative", "brand", "marketing", "seo", "ppc",
		"advertising", "digital marketing", "social media", "content marketing", "email marketing",
		"marketing agency", "ad agency", "creative agency", "marketing services",
	},
	FreelanceDesign: {
		"freelance", "designer", "design", "graphic design", "ui", "ux", "logo", "branding",
		"visual", "creative", "portfolio", "client work", "design project", "freelance designer",
		"graphic designer", "web design",
	},
	CoffeeShops: {
		"coffee", "cafe", "café", "coffee shop", "barista", "espresso", "latte", "coffee business",
		"cafe owner", "coffee shop owner", "roastery", "coffee roaster", "coffee house", "beverage",
	},
	CourseCreators: {
		"course", "online course", "education", "teaching", "learning", "student", "curriculum",
		"course creator", "online education", "elearning", "training", "workshop", "tutorial",
		"educational content", "course platform",
	},
	LocalServiceBiz: {
		"local business", "service business", "contractor", "plumber", "electrician", "handyman",
		"home improvement", "local services", "service provider", "home services", "maintenance",
		"repair", "installation", "local contractor",
	},
	AppDevelopers: {
		"app developer", "mobile app", "ios", "android", "app development", "programming",
		"coding", "developer", "software developer", "app store", "mobile development",
		"app creation", "app building", "mobile app developer",
	},
	Consultants: {
		"consultant", "coach", "consulting", "coaching", "advisor", "mentor", "business coach",
		"life coach", "consulting business", "coaching business", "professional services",
		"business advisor", "strategy consultant",
	},
	Fitness: {
		"fitness", "gym", "workout", "exercise", "training", "health", "wellness", "personal training",
		"fitness business", "gym owner", "fitness studio", "health club", "fitness center",
	},
	SaaSTech: {
		"saas", "software", "tech", "technology", "app", "application", "platform", "startup",
		"software company", "tech company", "web app", "mobile app", "cloud", "b2b", "enterprise",
	},
	Ecommerce: {
		"ecommerce", "online store", "retail", "shopping", "products", "marketplace", "seller",
		"vendor", "shopify", "amazon", "etsy", "dropshipping", "fulfillment", "merchandise",
	},
	MarketingAds: {
		"marketing", "advertising", "agency", "digital marketing", "social media", "seo", "ppc",
		"content marketing", "email marketing", "brand", "campaign", "creative", "marketing agency",
	},
	Education: {
		"education", "learning", "teaching", "course", "online course", "student", "elearning",
		"training", "workshop", "tutorial", "educational", "course creator", "online education",
	},
	FoodBeverage: {
		"food", "restaurant", "cafe", "coffee", "beverage", "dining", "food business", "restaurant owner",
		"coffee shop", "cafe owner", "food service", "culinary", "catering", "food truck",
	},
	LocalServices: {
		"local business", "service", "contractor", "home improvement", "maintenance", "repair",
		"installation", "local services", "service provider", "home services", "local contractor",
	},
	Finance: {
		"finance", "financial", "fintech", "banking", "investment", "money", "financial services",
		"fintech company", "financial advisor", "investment", "trading", "cryptocurrency", "fintech",
	},
	Creatives: {
		"freelance", "freelancer", "creative", "design", "designer", "artist", "creative services",
		"freelance work", "creative business", "design business", "creative professional",
	},
	ConsultingCoach: {
		"consulting", "coaching", "consultant", "coach", "advisor", "mentor", "professional services",
		"business consulting", "life coaching", "business coach", "strategy consultant", "business advisor",
	},
}

func init() {
	for cat, kws := range categoryKeywords {
		categoryKeywords[cat] = dedupe(kws)
	}
}

// Tier holds the primary subreddits searched for a category and the
// backup ones added when a wider net is requested.
type Tier struct {
	Primary []string
	Backup  []string
}

var categorySubreddits = map[Category]Tier{
	SaaSCompanies:   {Primary: []string{"SaaS", "startups", "Entrepreneur"}, Backup: []string{"IndieDev"}},
	AppDevelopers:   {Primary: []string{"SaaS", "startups", "Entrepreneur"}, Backup: []string{"IndieDev"}},
	Gyms:            {Primary: []string{"FitnessBusiness", "GymOwners", "PersonalTraining"}, Backup: []string{"Fitness"}},
	EcommerceStores: {Primary: []string{"ecommerce", "dropshipping", "Shopify"}, Backup: []string{"Entrepreneur"}},
	MarketingAgency: {Primary: []string{"marketing", "SEO", "digital_marketing"}, Backup: []string{"advertising"}},
	FreelanceDesign: {Primary: []string{"freelance", "graphic_design", "Design"}, Backup: []string{"DesignCritiques"}},
	CoffeeShops:     {Primary: []string{"CoffeeShopOwners", "Coffee", "Barista"}, Backup: []string{"CoffeeShopOwners"}},
	CourseCreators:  {Primary: []string{"online_instructors", "InstructionalDesign", "edtech"}, Backup: []string{"elearning"}},
	LocalServiceBiz: {Primary: []string{"smallbusiness", "Entrepreneur", "LocalSEO"}, Backup: []string{"ppc"}},
	Consultants:     {Primary: []string{"consulting", "Coaching", "Entrepreneur"}, Backup: []string{"consultants"}},
	JobsAndHiring:   {Primary: []string{"jobs", "jobhunting", "layoffs"}, Backup: []string{"WorkOnline"}},
	Fitness:         {Primary: []string{"FitnessBusiness", "GymOwners", "PersonalTraining"}, Backup: []string{"Fitness"}},
	SaaSTech:        {Primary: []string{"SaaS", "startups", "Entrepreneur"}, Backup: []string{"IndieDev"}},
	Ecommerce:       {Primary: []string{"ecommerce", "dropshipping", "Shopify"}, Backup: []string{"Entrepreneur"}},
	MarketingAds:    {Primary: []string{"marketing", "SEO", "digital_marketing"}, Backup: []string{"advertising"}},
	Education:       {Primary: []string{"online_instructors", "InstructionalDesign", "edtech"}, Backup: []string{"elearning"}},
	FoodBeverage:    {Primary: []string{"CoffeeShopOwners", "Coffee", "Barista"}, Backup: []string{"CoffeeShopOwners"}},
	LocalServices:   {Primary: []string{"smallbusiness", "Entrepreneur", "LocalSEO"}, Backup: []string{"ppc"}},
	Finance:         {Primary: []string{"Fintech", "PersonalFinance", "FinancialPlanning"}, Backup: []string{"Investing"}},
	Creatives:       {Primary: []string{"freelance", "graphic_design", "Design"}, Backup: []string{"DesignCritiques"}},
	ConsultingCoach: {Primary: []string{"consulting", "Coaching", "Entrepreneur"}, Backup: []string{"consultants"}},
}

// Aliases maps short CLI names to categories.
var Aliases = map[string]Category{
	"gym":        Gyms,
	"saas":       SaaSCompanies,
	"store":      EcommerceStores,
	"agency":     MarketingAgency,
	"designer":   FreelanceDesign,
	"cafe":       CoffeeShops,
	"course":     CourseCreators,
	"local":      LocalServiceBiz,
	"appdev":     AppDevelopers,
	"coach":      Consultants,
	"jobs":       JobsAndHiring,
	"fitness":    Fitness,
	"tech":       SaaSTech,
	"ecommerce":  Ecommerce,
	"marketing":  MarketingAds,
	"edtech":     Education,
	"food":       FoodBeverage,
	"services":   LocalServices,
	"fintech":    Finance,
	"creative":   Creatives,
	"consulting": ConsultingCoach,
}

// Valid reports whether c is a known category.
func Valid(c Category) bool {
	_, ok := categorySubreddits[c]
	return ok
}

// KindOf returns whether c is a business or an industry category.
func KindOf(c Category) Kind {
	for _, ind := range IndustryCategories() {
		if ind == c {
			return KindIndustry
		}
	}
	return KindBusiness
}

// Keywords returns the de-duplicated keyword list for c. Unknown categories
// and categories without a keyword list return nil.
func Keywords(c Category) []string {
	kws := categoryKeywords[c]
	if len(kws) == 0 {
		return nil
	}
	out := make([]string, len(kws))
	copy(out, kws)
	return out
}

// Subreddits returns the sources searched for c, appending the backup tier
// when wide is set.
func Subreddits(c Category, wide bool) []string {
	tier, ok := categorySubreddits[c]
	if !ok {
		return nil
	}
	out := append([]string(nil), tier.Primary...)
	if wide {
		for _, b := range tier.Backup {
			if !contains(out, b) {
				out = append(out, b)
			}
		}
	}
	return out
}

// Rivals returns up to n other categories of the same kind as c, in
// canonical order, that carry a keyword list. A category without keywords
// of its own has no rivals.
func Rivals(c Category, n int) []Category {
	if len(categoryKeywords[c]) == 0 {
		return nil
	}
	pool := BusinessCategories()
	if KindOf(c) == KindIndustry {
		pool = IndustryCategories()
	}
	var out []Category
	for _, other := range pool {
		if len(out) >= n {
			break
		}
		if other == c || len(categoryKeywords[other]) == 0 {
			continue
		}
		out = append(out, other)
	}
	return out
}

// ResolveAlias maps a CLI alias or a full category name to a Category.
func ResolveAlias(alias string) (Category, error) {
	alias = strings.TrimSpace(alias)
	if cat, ok := Aliases[strings.ToLower(alias)]; ok {
		return cat, nil
	}
	// Also accept full category names (case-insensitive)
	for _, cat := range AllCategories() {
		if strings.EqualFold(string(cat), alias) {
			return cat, nil
		}
	}
	valid := make([]string, 0, len(Aliases))
	for k := range Aliases {
		valid = append(valid, k)
	}
	sort.Strings(valid)
	return "", fmt.Errorf("unknown category %q (valid: %s)", alias, strings.Join(valid, ", "))
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
