package registry

func endpoint(u string) *string { return &u }

// builtin is the authored registry table. Codes must stay in sync with the
// classifier rule codes in pkg/classify.
var builtin = []RegistrarConfig{
	{
		Name:                "Cloudflare",
		Code:                "cloudflare",
		APIEndpoint:         endpoint("https://api.cloudflare.com/client/v4"),
		AuthType:            AuthAPIKey,
		SupportedOperations: []Operation{OpDNSRecords, OpZoneSettings, OpDNSSEC},
		DocsURL:             "https://developers.cloudflare.com/api/",
		SetupInstructions: []string{
			"Log in to the Cloudflare dashboard",
			"Open My Profile > API Tokens",
			"Create a token from the \"Edit zone DNS\" template",
			"Scope the token to the zone you want to manage",
			"Copy the token and paste it here",
		},
	},
	{
		Name:                "Namecheap",
		Code:                "namecheap",
		APIEndpoint:         endpoint("https://api.namecheap.com/xml.response"),
		AuthType:            AuthAPIKey,
		SupportedOperations: []Operation{OpDNSRecords, OpNameservers},
		DocsURL:             "https://www.namecheap.com/support/api/intro/",
		SetupInstructions: []string{
			"Log in to your Namecheap account",
			"Go to Profile > Tools > Namecheap API Access",
			"Turn API access on and accept the terms",
			"Whitelist the IP address of the server making API calls",
			"Copy your API user name and API key",
		},
	},
	{
		Name:                "GoDaddy",
		Code:                "godaddy",
		APIEndpoint:         endpoint("https://api.godaddy.com/v1"),
		AuthType:            AuthAPIKey,
		SupportedOperations: []Operation{OpDNSRecords, OpNameservers},
		DocsURL:             "https://developer.godaddy.com/doc/endpoint/domains",
		SetupInstructions: []string{
			"Sign in at developer.godaddy.com",
			"Open API Keys and create a Production key",
			"Copy the key and its secret; the secret is shown only once",
			"Paste both values here",
		},
	},
	{
		Name:                "Amazon Route 53",
		Code:                "route53",
		APIEndpoint:         endpoint("https://route53.amazonaws.com/2013-04-01"),
		AuthType:            AuthCredentials,
		SupportedOperations: []Operation{OpDNSRecords, OpZoneSettings, OpDNSSEC},
		DocsURL:             "https://docs.aws.amazon.com/Route53/latest/APIReference/",
		SetupInstructions: []string{
			"Open the AWS IAM console",
			"Create a user with programmatic access",
			"Attach a policy allowing route53:ChangeResourceRecordSets and route53:ListHostedZones",
			"Create an access key for the user",
			"Enter the access key ID and secret access key here",
		},
	},
	{
		Name:                "DigitalOcean",
		Code:                "digitalocean",
		APIEndpoint:         endpoint("https://api.digitalocean.com/v2"),
		AuthType:            AuthOAuth,
		SupportedOperations: []Operation{OpDNSRecords},
		DocsURL:             "https://docs.digitalocean.com/reference/api/",
		SetupInstructions: []string{
			"Click Connect DigitalOcean",
			"Sign in and approve access to your account",
			"Select the domain to manage",
		},
	},
	{
		Name:                "Google Cloud DNS",
		Code:                "google",
		APIEndpoint:         endpoint("https://dns.googleapis.com/dns/v1"),
		AuthType:            AuthOAuth,
		SupportedOperations: []Operation{OpDNSRecords, OpZoneSettings, OpDNSSEC},
		DocsURL:             "https://cloud.google.com/dns/docs/reference/rest/v1",
		SetupInstructions: []string{
			"Click Connect Google Cloud",
			"Choose the Google account that owns the project",
			"Grant the DNS Administrator scope",
			"Select the project and managed zone",
		},
	},
	{
		Name:                "Hover",
		Code:                "hover",
		AuthType:            AuthCredentials,
		SupportedOperations: []Operation{OpDNSRecords},
		DocsURL:             "https://help.hover.com/hc/en-us/articles/217282457",
		SetupInstructions: []string{
			"Disable two-step verification for the account used, or create a dedicated user",
			"Enter your Hover username",
			"Enter your Hover password",
		},
	},
	{
		Name:                "Network Solutions",
		Code:                "networksolutions",
		AuthType:            AuthCredentials,
		SupportedOperations: []Operation{OpDNSRecords, OpNameservers},
		DocsURL:             "https://www.networksolutions.com/manage-it/index.jsp",
		SetupInstructions: []string{
			"Log in to Network Solutions Account Manager",
			"Confirm the domain is listed under My Domain Names",
			"Enter your account username and password here",
		},
	},
	{
		Name:                "IONOS (1&1)",
		Code:                "ionos",
		APIEndpoint:         endpoint("https://api.hosting.ionos.com/dns/v1"),
		AuthType:            AuthAPIKey,
		SupportedOperations: []Operation{OpDNSRecords, OpZoneSettings},
		DocsURL:             "https://developer.hosting.ionos.com/docs/dns",
		SetupInstructions: []string{
			"Sign in at developer.hosting.ionos.com",
			"Create an API key under API Keys",
			"Copy the public prefix and the secret",
			"Enter them here as prefix.secret",
		},
	},
	{
		Name:                "Bluehost",
		Code:                "bluehost",
		AuthType:            AuthCredentials,
		SupportedOperations: []Operation{OpDNSRecords},
		DocsURL:             "https://www.bluehost.com/help/article/dns-management-add-edit-or-delete-dns-entries",
		SetupInstructions: []string{
			"Log in to the Bluehost control panel",
			"Make sure the domain uses Bluehost nameservers",
			"Enter your control panel username and password",
		},
	},
	{
		Name:                "SiteGround",
		Code:                "siteground",
		AuthType:            AuthCredentials,
		SupportedOperations: []Operation{OpDNSRecords},
		DocsURL:             "https://www.siteground.com/kb/manage-dns-records/",
		SetupInstructions: []string{
			"Log in to SiteGround Site Tools",
			"Open Domain > DNS Zone Editor to confirm the zone exists",
			"Enter your SiteGround username and password",
		},
	},
	{
		Name:                "Domain.com",
		Code:                "domaincom",
		AuthType:            AuthCredentials,
		SupportedOperations: []Operation{OpDNSRecords, OpDomainForwarding},
		DocsURL:             "https://www.domain.com/help/article/dns-management-how-to-update-dns-records",
		SetupInstructions: []string{
			"Log in to your Domain.com account",
			"Open the domain and select DNS & Nameservers",
			"Enter your account email and password here",
		},
	},
}
