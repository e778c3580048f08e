package generator

// Fixed vocabulary the fake factory draws subjects and distractors from.
var lexicon = []string{
	"HTTP", "TCP", "UDP", "DNS", "REST", "SOAP", "JWT", "Redis", "MongoDB", "Kafka",
	"gRPC", "GraphQL", "OAuth2", "TLS", "CDN", "S3", "JSON", "YAML", "XML",
}

// related maps a lexicon token to semantically close tokens. Distractors are
// sampled outside a subject's related set to reduce accidental overlap.
var related = map[string][]string{
	"HTTP":    {"REST", "TLS", "JSON", "CDN"},
	"TCP":     {"UDP", "TLS"},
	"DNS":     {"CDN", "HTTP"},
	"REST":    {"HTTP", "JSON", "OAuth2"},
	"JWT":     {"OAuth2", "HTTP"},
	"Redis":   {"Kafka", "MongoDB"},
	"MongoDB": {"JSON", "Redis"},
	"Kafka":   {"Redis", "JSON"},
	"gRPC":    {"HTTP", "TLS"},
	"GraphQL": {"HTTP", "JSON"},
	"OAuth2":  {"JWT", "HTTP"},
	"TLS":     {"HTTP", "TCP"},
	"CDN":     {"HTTP", "DNS"},
	"S3":      {"JSON", "HTTP"},
	"JSON":    {"HTTP", "REST", "GraphQL", "MongoDB"},
	"YAML":    {"JSON", "XML"},
	"XML":     {"SOAP", "HTTP"},
	"UDP":     {"TCP"},
	"SOAP":    {"HTTP", "XML"},
}
