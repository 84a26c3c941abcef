package config

var defaults = map[string]any{
	"log_level": "info",

	"listen":   ":8080",
	"base_url": DEFAULT_SHARE_BASE_URL,

	"seed_file": "",

	"store_timeout": 5, // seconds

	"email.host":     "",
	"email.port":     25,
	"email.username": "",
	"email.password": "",
	"email.from":     "noreply@example.com",

	"storage.local.path": "./data/jkcalendar.db",
}

func Defaults() map[string]any {
	values := make(map[string]any)
	for k, v := range defaults {
		values[k] = v
	}
	return values
}
