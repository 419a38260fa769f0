package catmap

// Default returns the production rule table. Keyword lists are matched
// case-insensitively against both Turkish and English vendor labels, since
// the vendors mix locales freely.
func Default() *Normalizer {
	return New(Rules{
		BrandSpecific: map[string][]BrandRule{
			"Interra": {
				{Match: "KNX Dokunmatik Panel", Category: "Akıllı Bina Otomasyonu"},
				{Match: "iX Serisi", Category: "Akıllı Bina Otomasyonu"},
				{Match: "interkom", Category: "Güvenlik & İnterkom"},
			},
			"EAE": {
				{Match: "KNX Dokunmatik Panel", Category: "Akıllı Bina Otomasyonu"},
				{Match: "mona", Category: "Anahtar & Priz Grubu"},
			},
			"Core": {
				{Match: "Core Akıllı Ev Sistemleri", Category: "Akıllı Bina Otomasyonu"},
			},
			"Legrand": {
				{Match: "guest room", Category: "Otel Çözümleri"},
			},
		},
		Global: []GlobalRule{
			{
				Category: "Akıllı Bina Otomasyonu",
				Keywords: []string{
					"knx", "panel", "otomasyon", "automation", "aktüatör",
					"actuator", "gateway", "sensör", "sensor", "termostat",
					"thermostat", "dali",
				},
			},
			{
				Category: "Anahtar & Priz Grubu",
				Keywords: []string{
					"anahtar", "priz", "switch", "socket", "çerçeve", "frame",
					"dimmer",
				},
			},
			{
				Category: "Güvenlik & İnterkom",
				Keywords: []string{
					"interkom", "intercom", "güvenlik", "security", "kamera",
					"camera", "geçiş", "access",
				},
			},
			{
				Category: "Ağ & Altyapı",
				Keywords: []string{
					"network", "ethernet", "kablo", "cable", "rack", "kabinet",
					"patch", "fiber",
				},
			},
			{
				Category: "Otel Çözümleri",
				Keywords: []string{"otel", "hotel", "grms"},
			},
		},
		Fallback: Fallback,
	})
}
