package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Trading Journal Configuration

[risk]
# Daily loss limit in account currency (0 disables)
daily_loss_limit = 0.0
# Maximum trades per day (0 disables)
max_trades_per_day = 0

[calculator]
# Defaults for the position calculator
default_balance = 1000.0
default_risk_percent = 1.0
# "forex" or "crypto"
default_mode = "forex"
default_leverage = 1.0

[backtest]
# Defaults for a new backtest session
balance = 1000.0
risk_percent = 1.0
reward_risk = 2.0
asset = ""
style = ""

[logging]
# debug, info, warn, error
level = "info"
# Log to stderr
console = false
# Log to a rotating file under logs/
file = true
max_size = 10
max_backups = 5
max_age = 30

[coach]
# Any OpenAI-compatible chat completion endpoint
base_url = "https://openrouter.ai/api/v1"
model = "openai/gpt-4o-mini"
timeout = "60s"
max_tokens = 1024
temperature = 0.7
# Attempts per request when the endpoint is rate limited or failing
max_attempts = 3

[storage]
# Defaults to journal.db next to this file
db_path = ""
`

const credentialsTemplate = `# Trading Journal Credentials
# WARNING: Keep this file secure! Do not commit to version control.

[coach]
api_key = ""
`

func createTemplateConfig(configDir string) (string, error) {
	return writeTemplate(configDir, "config.toml", configTemplate, 0644)
}

func createTemplateCredentials(configDir string) (string, error) {
	// Use restricted permissions for credentials file
	return writeTemplate(configDir, "credentials.toml", credentialsTemplate, 0600)
}

func writeTemplate(configDir, name, content string, perm os.FileMode) (string, error) {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, name)
	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		return "", fmt.Errorf("writing %s template: %w", name, err)
	}

	return path, nil
}
