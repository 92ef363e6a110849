package platform

import "strings"

// Unknown is reported for any field no fingerprint matched.
const Unknown = "Unknown"

// Rule maps a label to the substrings whose presence implies it.
type Rule struct {
	Label    string   `yaml:"label"`
	Patterns []string `yaml:"patterns"`
}

// RuleSet is an ordered list of rules. Order is significant for FirstMatch.
type RuleSet []Rule

// FirstMatch returns the label of the first rule, in declaration order, with
// any pattern contained in haystack. It returns Unknown when none match.
func (rs RuleSet) FirstMatch(haystack string) string {
	if haystack == "" {
		return Unknown
	}
	for _, r := range rs {
		if r.matches(haystack) {
			return r.Label
		}
	}
	return Unknown
}

// AllMatches returns every label with a pattern contained in haystack, in
// declaration order.
func (rs RuleSet) AllMatches(haystack string) []string {
	matched := []string{}
	if haystack == "" {
		return matched
	}
	for _, r := range rs {
		if r.matches(haystack) {
			matched = append(matched, r.Label)
		}
	}
	return matched
}

func (r Rule) matches(haystack string) bool {
	for _, p := range r.Patterns {
		if p != "" && strings.Contains(haystack, p) {
			return true
		}
	}
	return false
}

// normalized returns a deep copy with every pattern lower-cased.
func (rs RuleSet) normalized() RuleSet {
	out := make(RuleSet, len(rs))
	for i, r := range rs {
		patterns := make([]string, len(r.Patterns))
		for j, p := range r.Patterns {
			patterns[j] = strings.ToLower(p)
		}
		out[i] = Rule{Label: r.Label, Patterns: patterns}
	}
	return out
}

// Rules groups the rule sets of every fingerprint dimension.
type Rules struct {
	CMS          RuleSet `yaml:"cms"`
	Frameworks   RuleSet `yaml:"frameworks"`
	Hosting      RuleSet `yaml:"hosting"`
	Servers      RuleSet `yaml:"servers"`
	CDNs         RuleSet `yaml:"cdns"`
	Technologies RuleSet `yaml:"technologies"`
}

func (r Rules) normalized() Rules {
	return Rules{
		CMS:          r.CMS.normalized(),
		Frameworks:   r.Frameworks.normalized(),
		Hosting:      r.Hosting.normalized(),
		Servers:      r.Servers.normalized(),
		CDNs:         r.CDNs.normalized(),
		Technologies: r.Technologies.normalized(),
	}
}

// DefaultRules returns the built-in fingerprint tables.
func DefaultRules() Rules {
	return Rules{
		CMS: RuleSet{
			{Label: "WordPress", Patterns: []string{"wp-content", "wp-includes", "wp-json"}},
			{Label: "Shopify", Patterns: []string{"cdn.shopify.com", "shopify.theme", "myshopify.com"}},
			{Label: "Wix", Patterns: []string{"wixstatic.com", "static.parastorage.com", "_wixcss"}},
			{Label: "Squarespace", Patterns: []string{"static1.squarespace.com", "squarespace-cdn.com", "squarespace.com"}},
			{Label: "Webflow", Patterns: []string{"data-wf-page", "data-wf-site", "webflow.js"}},
			{Label: "Drupal", Patterns: []string{"drupal-settings-json", "/sites/default/files", "drupal.js"}},
			{Label: "Joomla", Patterns: []string{"/media/jui/", "/media/system/js/", "joomla"}},
			{Label: "Ghost", Patterns: []string{"ghost-portal", `content="ghost`}},
			{Label: "Magento", Patterns: []string{"mage/cookies", "magento"}},
			{Label: "HubSpot CMS", Patterns: []string{"hs-sites.com", "hubspot-cms"}},
			{Label: "Blogger", Patterns: []string{"blogger.com", "blogspot.com"}},
			{Label: "Weebly", Patterns: []string{"weebly.com", "editmysite.com"}},
		},
		Frameworks: RuleSet{
			{Label: "React", Patterns: []string{"data-reactroot", "react-dom", "react.production", "__react"}},
			{Label: "Next.js", Patterns: []string{"__next_data__", "/_next/static"}},
			{Label: "Vue.js", Patterns: []string{"data-v-", "vue.min.js", "vue.global", "__vue__"}},
			{Label: "Nuxt.js", Patterns: []string{"__nuxt", "/_nuxt/"}},
			{Label: "Angular", Patterns: []string{"ng-version", "ng-app", "angular.min.js"}},
			{Label: "Svelte", Patterns: []string{"svelte-", "__sveltekit"}},
			{Label: "Gatsby", Patterns: []string{"___gatsby", "gatsby-"}},
			{Label: "Ember.js", Patterns: []string{"ember-application", "ember.min.js"}},
			{Label: "Alpine.js", Patterns: []string{"alpinejs", "x-data="}},
			{Label: "Laravel", Patterns: []string{"laravel_session", "laravel"}},
			{Label: "Django", Patterns: []string{"csrfmiddlewaretoken", "__admin_media_prefix__"}},
			{Label: "Ruby on Rails", Patterns: []string{"csrf-param", "rails-ujs", "authenticity_token"}},
		},
		Hosting: RuleSet{
			{Label: "Vercel", Patterns: []string{"x-vercel-id", ".vercel.app", "vercel"}},
			{Label: "Netlify", Patterns: []string{"x-nf-request-id", ".netlify.app", "netlify"}},
			{Label: "GitHub Pages", Patterns: []string{"github.io", "x-github-request-id"}},
			{Label: "Cloudflare Pages", Patterns: []string{".pages.dev"}},
			{Label: "Firebase", Patterns: []string{"firebaseapp.com", ".web.app"}},
			{Label: "Heroku", Patterns: []string{"herokuapp.com", "heroku"}},
			{Label: "WP Engine", Patterns: []string{"wpengine", "wpenginepowered.com"}},
			{Label: "Kinsta", Patterns: []string{"kinsta"}},
			{Label: "Shopify", Patterns: []string{"myshopify.com", "cdn.shopify.com"}},
			{Label: "Squarespace", Patterns: []string{"squarespace.com"}},
			{Label: "Wix", Patterns: []string{"wixstatic.com", "x-wix-request-id"}},
			{Label: "AWS", Patterns: []string{"amazonaws.com", "cloudfront.net", "x-amz-"}},
			{Label: "Google Cloud", Patterns: []string{"appspot.com", "storage.googleapis.com", "x-goog-"}},
			{Label: "Azure", Patterns: []string{"azurewebsites.net", "azureedge.net", "x-azure-ref"}},
		},
		Servers: RuleSet{
			{Label: "Nginx", Patterns: []string{"nginx"}},
			{Label: "OpenResty", Patterns: []string{"openresty"}},
			{Label: "Apache", Patterns: []string{"apache"}},
			{Label: "LiteSpeed", Patterns: []string{"litespeed"}},
			{Label: "Microsoft IIS", Patterns: []string{"microsoft-iis"}},
			{Label: "Caddy", Patterns: []string{"caddy"}},
			{Label: "Cloudflare", Patterns: []string{"cloudflare"}},
			{Label: "Vercel", Patterns: []string{"vercel"}},
			{Label: "Netlify", Patterns: []string{"netlify"}},
			{Label: "GitHub", Patterns: []string{"github.com"}},
			{Label: "Google Frontend", Patterns: []string{"google frontend", "gws", "gse"}},
			{Label: "Express", Patterns: []string{"express"}},
			{Label: "PHP", Patterns: []string{"php"}},
			{Label: "ASP.NET", Patterns: []string{"asp.net"}},
		},
		CDNs: RuleSet{
			{Label: "Cloudflare", Patterns: []string{"cf-ray", "cf-cache-status", "cdnjs.cloudflare.com"}},
			{Label: "Fastly", Patterns: []string{"fastly", "x-fastly-request-id"}},
			{Label: "Akamai", Patterns: []string{"akamai", "akamaized.net", "akamaihd.net"}},
			{Label: "Amazon CloudFront", Patterns: []string{"x-amz-cf-id", "cloudfront.net"}},
			{Label: "Azure CDN", Patterns: []string{"azureedge.net"}},
			{Label: "BunnyCDN", Patterns: []string{"b-cdn.net", "bunnycdn"}},
			{Label: "jsDelivr", Patterns: []string{"cdn.jsdelivr.net"}},
			{Label: "unpkg", Patterns: []string{"unpkg.com"}},
		},
		Technologies: RuleSet{
			{Label: "Google Analytics", Patterns: []string{"google-analytics.com", "googletagmanager.com/gtag/js", "ga('create'"}},
			{Label: "Google Tag Manager", Patterns: []string{"googletagmanager.com/gtm.js", "gtm.start"}},
			{Label: "Facebook Pixel", Patterns: []string{"connect.facebook.net", "fbq("}},
			{Label: "Hotjar", Patterns: []string{"static.hotjar.com", "hotjar"}},
			{Label: "Microsoft Clarity", Patterns: []string{"clarity.ms"}},
			{Label: "jQuery", Patterns: []string{"jquery"}},
			{Label: "Bootstrap", Patterns: []string{"bootstrap.min.css", "bootstrap.min.js", "bootstrap.bundle"}},
			{Label: "Tailwind CSS", Patterns: []string{"tailwindcss", "tailwind.min.css"}},
			{Label: "Font Awesome", Patterns: []string{"font-awesome", "fontawesome"}},
			{Label: "Google Fonts", Patterns: []string{"fonts.googleapis.com", "fonts.gstatic.com"}},
			{Label: "Stripe", Patterns: []string{"js.stripe.com"}},
			{Label: "PayPal", Patterns: []string{"paypal.com/sdk", "paypalobjects.com"}},
			{Label: "Intercom", Patterns: []string{"widget.intercom.io", "intercomsettings"}},
			{Label: "HubSpot", Patterns: []string{"js.hs-scripts.com", "js.hs-analytics.net"}},
			{Label: "reCAPTCHA", Patterns: []string{"recaptcha"}},
			{Label: "Yoast SEO", Patterns: []string{"yoast"}},
			{Label: "WooCommerce", Patterns: []string{"woocommerce"}},
			{Label: "Elementor", Patterns: []string{"elementor"}},
			{Label: "Schema.org", Patterns: []string{"schema.org"}},
		},
	}
}
