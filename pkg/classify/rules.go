package classify

// Rules is the nameserver fingerprint table in priority order.
//
// Registrar-operated DNS comes first. Hosting providers follow: a domain can
// be served by their nameservers while being registered elsewhere, so they
// are separate outcomes with lower confidence and no registry entry.
var Rules = []Rule{
	{
		Match:      anyOf(matches(`[a-z0-9-]+\.ns\.cloudflare\.com`), suffix("cloudflare.com")),
		Name:       "Cloudflare",
		Code:       "cloudflare",
		Confidence: 0.95,
	},
	{
		Match:      suffix("domaincontrol.com"),
		Name:       "GoDaddy",
		Code:       "godaddy",
		Confidence: 0.95,
	},
	{
		Match:      anyOf(matches(`ns-\d+\.awsdns-\d+\.`), contains(".awsdns-")),
		Name:       "Amazon Route 53",
		Code:       "route53",
		Confidence: 0.95,
	},
	{
		Match:      suffix("registrar-servers.com"),
		Name:       "Namecheap",
		Code:       "namecheap",
		Confidence: 0.95,
	},
	{
		Match:      suffix("digitalocean.com"),
		Name:       "DigitalOcean",
		Code:       "digitalocean",
		Confidence: 0.90,
	},
	{
		Match:      anyOf(matches(`ns-cloud-[a-z0-9]+\.googledomains\.com`), suffix("googledomains.com")),
		Name:       "Google Cloud DNS",
		Code:       "google",
		Confidence: 0.90,
	},
	{
		Match:      suffix("hover.com"),
		Name:       "Hover",
		Code:       "hover",
		Confidence: 0.90,
	},
	{
		Match:      suffix("worldnic.com"),
		Name:       "Network Solutions",
		Code:       "networksolutions",
		Confidence: 0.90,
	},
	{
		Match:      suffix("ui-dns.com", "ui-dns.de", "ui-dns.org", "ui-dns.biz"),
		Name:       "IONOS (1&1)",
		Code:       "ionos",
		Confidence: 0.90,
	},
	{
		Match:      suffix("bluehost.com", "hostmonster.com"),
		Name:       "Bluehost",
		Code:       "bluehost",
		Confidence: 0.85,
	},
	{
		Match:      suffix("siteground.net", "siteground.com"),
		Name:       "SiteGround",
		Code:       "siteground",
		Confidence: 0.85,
	},
	{
		Match:      suffix("domain.com"),
		Name:       "Domain.com",
		Code:       "domaincom",
		Confidence: 0.80,
	},

	// Hosting providers
	{
		Match:      suffix("hostgator.com", "websitewelcome.com"),
		Name:       "HostGator",
		Code:       "hostgator",
		Confidence: 0.80,
	},
	{
		Match:      suffix("dreamhost.com"),
		Name:       "DreamHost",
		Code:       "dreamhost",
		Confidence: 0.80,
	},
	{
		Match:      suffix("wpengine.com"),
		Name:       "WP Engine",
		Code:       "wpengine",
		Confidence: 0.75,
	},
	{
		Match:      anyOf(suffix("squarespacedns.com"), contains("squarespace")),
		Name:       "Squarespace",
		Code:       "squarespace",
		Confidence: 0.75,
	},
	{
		Match:      suffix("wixdns.net"),
		Name:       "Wix",
		Code:       "wix",
		Confidence: 0.75,
	},
	{
		Match:      contains("shopify"),
		Name:       "Shopify",
		Code:       "shopify",
		Confidence: 0.70,
	},
}
