package classify

import "strings"

// NameConfidence is reported for a registrar recognised by name in WHOIS data.
// The registrar of record is authoritative there, unlike a DNS fingerprint.
const NameConfidence = 1.0

// NameRules maps WHOIS registrar names to the provider vocabulary of Rules.
// Matching is case-insensitive substring, first match wins.
var NameRules = []Rule{
	{Match: contains("cloudflare"), Name: "Cloudflare", Code: "cloudflare"},
	{Match: contains("godaddy", "wild west domains"), Name: "GoDaddy", Code: "godaddy"},
	{Match: contains("amazon", "route 53", "route53"), Name: "Amazon Route 53", Code: "route53"},
	{Match: contains("namecheap"), Name: "Namecheap", Code: "namecheap"},
	{Match: contains("digitalocean", "digital ocean"), Name: "DigitalOcean", Code: "digitalocean"},
	{Match: contains("squarespace"), Name: "Squarespace", Code: "squarespace"},
	{Match: contains("google"), Name: "Google Cloud DNS", Code: "google"},
	{Match: contains("hover"), Name: "Hover", Code: "hover"},
	{Match: contains("network solutions", "networksolutions"), Name: "Network Solutions", Code: "networksolutions"},
	{Match: contains("ionos", "1&1", "1and1", "1 & 1"), Name: "IONOS (1&1)", Code: "ionos"},
	{Match: contains("bluehost"), Name: "Bluehost", Code: "bluehost"},
	{Match: contains("siteground"), Name: "SiteGround", Code: "siteground"},
	{Match: contains("domain.com"), Name: "Domain.com", Code: "domaincom"},
	{Match: contains("hostgator"), Name: "HostGator", Code: "hostgator"},
	{Match: contains("dreamhost"), Name: "DreamHost", Code: "dreamhost"},
	{Match: contains("wp engine", "wpengine"), Name: "WP Engine", Code: "wpengine"},
	{Match: contains("wix.com", "wix "), Name: "Wix", Code: "wix"},
	{Match: contains("shopify"), Name: "Shopify", Code: "shopify"},
}

// NormalizeName maps a WHOIS registrar name to a provider code. Unmatched or
// empty names yield Unknown().
func NormalizeName(name string) Result {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return Unknown()
	}
	res, _ := firstMatch(NameRules, n)
	if !res.IsUnknown() {
		res.Confidence = NameConfidence
	}
	return res
}
