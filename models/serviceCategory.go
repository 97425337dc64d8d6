package models

import "strings"

type categoryRule struct {
	category ServiceCategory
	keywords []string
}

// Checked top to bottom; the first rule with a keyword contained in the lowercased description wins,
// so "website development and hosting" is Website Development. Keywords short enough to hide inside
// unrelated words ("ads" in "uploads", "ios" in "portfolios") are avoided or spelled out.
var serviceCategoryRules = []categoryRule{
	{ServiceCategoryWebsiteDevelopment, []string{"website", "web development", "web design", "webdesign", "wordpress", "shopify", "landing page", "e-commerce", "ecommerce"}},
	{ServiceCategoryMobileApp, []string{"mobile app", "android", "ios app", "iphone", "flutter", "react native", "app development"}},
	{ServiceCategoryDigitalMarketing, []string{"digital marketing", "social media", "smm", "google ads", "facebook ads", "meta ads", "advertising", "ppc", "campaign", "marketing"}},
	{ServiceCategorySeo, []string{"seo", "search engine"}},
	{ServiceCategoryGraphicDesign, []string{"graphic", "logo", "branding", "ui/ux", "ui ux", "design"}},
	{ServiceCategoryConsulting, []string{"consulting", "consultancy", "consultation", "advisory", "audit", "training"}},
	{ServiceCategorySoftwareDevelopment, []string{"software", "erp", "crm", "api", "development", "integration"}},
	{ServiceCategoryMaintenance, []string{"maintenance", "support", "amc", "retainer"}},
	{ServiceCategoryHosting, []string{"hosting", "domain", "server", "cloud", "ssl"}},
	{ServiceCategoryContentWriting, []string{"content", "copywriting", "blog", "writing"}},
}

// ClassifyService maps a free-text service description to a category. Default Other.
func ClassifyService(description string) ServiceCategory {
	d := strings.ToLower(description)
	if strings.TrimSpace(d) == "" {
		return ServiceCategoryOther
	}
	for _, rule := range serviceCategoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(d, kw) {
				return rule.category
			}
		}
	}
	return ServiceCategoryOther
}
