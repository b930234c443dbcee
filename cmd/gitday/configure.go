package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gitday/gitday/internal/config"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Interactive setup wizard (with OS keychain support)",
	Long: `Walk through gitday configuration step-by-step with secure credential
storage.

This will configure:
1. AI provider (Gemini or OpenAI) and its API key
2. Model selection
3. Scan defaults (author filter, output directory)

API keys are stored in the OS keychain when one is available, never in
plaintext. Reports still work without any AI configuration: gitday falls
back to keyword-based analysis.`,
	RunE: runConfigure,
}

func runConfigure(cmd *cobra.Command, args []string) error {
	fmt.Println("🔧 gitday Configuration Wizard")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	configPath := filepath.Join(config.Dir(), "config.yaml")
	loadedCfg, err := config.Load(configPath)
	if err != nil {
		loadedCfg = config.Default()
	}

	km := config.NewKeyringManager()
	keychainAvailable := km.IsAvailable()
	if !keychainAvailable {
		fmt.Println("⚠️  OS keychain not available (headless system or Linux without libsecret)")
		fmt.Println("   API keys will be stored in the config file instead.")
		fmt.Println()
	}

	// Step 1: Provider
	fmt.Println("Step 1/4: AI Provider")
	fmt.Println()
	fmt.Println("Available providers:")
	fmt.Println("  1. gemini (recommended, free tier available)")
	fmt.Println("  2. openai")
	fmt.Println("  3. none (keyword-based analysis only)")
	fmt.Printf("Current: %s\n", providerLabel(loadedCfg))
	fmt.Print("Select provider (1-3) or press Enter to keep current: ")

	response := readLine(reader)
	switch response {
	case "1":
		loadedCfg.AI.Provider = "gemini"
		loadedCfg.AI.Enabled = true
	case "2":
		loadedCfg.AI.Provider = "openai"
		loadedCfg.AI.Enabled = true
	case "3":
		loadedCfg.AI.Enabled = false
	case "":
		// keep current
	}
	fmt.Printf("✅ Provider: %s\n", providerLabel(loadedCfg))
	fmt.Println()

	// Step 2: API key
	fmt.Println("Step 2/4: API Key")
	fmt.Println()
	if loadedCfg.AI.Enabled {
		if err := configureAPIKey(reader, loadedCfg, km, keychainAvailable); err != nil {
			return err
		}
	} else {
		fmt.Println("⏭️  Skipped, AI analysis is disabled")
	}
	fmt.Println()

	// Step 3: Scan defaults
	fmt.Println("Step 3/4: Scan Defaults")
	fmt.Println()
	fmt.Printf("Author filter (current: %s, Enter to keep, '-' to clear): ", orUnset(loadedCfg.Scan.Author))
	response = readLine(reader)
	switch response {
	case "":
	case "-":
		loadedCfg.Scan.Author = ""
	default:
		loadedCfg.Scan.Author = response
	}
	if loadedCfg.Scan.Author == "" {
		fmt.Print("Use your local git user as the author filter? (Y/n): ")
		response = readLine(reader)
		loadedCfg.Scan.UseGitUser = response == "" || strings.EqualFold(response, "y")
	}

	fmt.Printf("Report output directory (current: %s, Enter to keep): ", loadedCfg.Report.OutputDir)
	response = readLine(reader)
	if response != "" {
		loadedCfg.Report.OutputDir = response
	}
	fmt.Println()

	// Step 4: Save
	fmt.Println("Step 4/4: Save Configuration")
	fmt.Println()
	fmt.Printf("Save to: %s\n", configPath)
	fmt.Print("Confirm? (Y/n): ")

	response = readLine(reader)
	if response == "" || strings.EqualFold(response, "y") {
		if err := loadedCfg.Save(configPath); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Println("✅ Configuration saved!")
		fmt.Println()
		fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		fmt.Println("🎯 Next Steps:")
		fmt.Println()
		fmt.Println("1. Register your projects:")
		fmt.Println("   gitday projects add ~/code/my-project")
		fmt.Println()
		fmt.Println("2. Generate today's report:")
		fmt.Println("   gitday run -d ~/code")
	} else {
		fmt.Println("⏭️  Configuration not saved")
	}

	return nil
}

func configureAPIKey(reader *bufio.Reader, cfg *config.Config, km *config.KeyringManager, keychainAvailable bool) error {
	current := cfg.Credential()
	if current != "" {
		fmt.Printf("Current: %s\n", config.MaskAPIKey(current))
		fmt.Print("Keep existing key? (Y/n): ")
		response := readLine(reader)
		if response == "" || strings.EqualFold(response, "y") {
			return nil
		}
	} else if cfg.AI.Provider == "openai" {
		fmt.Println("Get your key at: https://platform.openai.com/api-keys")
	} else {
		fmt.Println("Get your key at: https://aistudio.google.com/apikey")
	}

	fmt.Printf("Enter your %s API key: ", cfg.AI.Provider)
	apiKey, err := readSecret(reader)
	if err != nil {
		return err
	}
	if apiKey == "" {
		fmt.Println("⏭️  No key entered, skipping")
		return nil
	}
	if cfg.AI.Provider == "openai" && !strings.HasPrefix(apiKey, "sk-") {
		fmt.Println("⚠️  Key does not look like an OpenAI key (expected sk-... prefix), saving anyway")
	}

	keyringItem := config.KeyringGeminiItem
	if cfg.AI.Provider == "openai" {
		keyringItem = config.KeyringOpenAIItem
	}

	if keychainAvailable {
		if err := km.SaveKey(keyringItem, apiKey); err != nil {
			fmt.Printf("⚠️  Failed to save to keychain: %v\n", err)
			fmt.Println("Saving to config file instead...")
			setCredential(cfg, apiKey)
		} else {
			fmt.Println("✅ API key saved to OS keychain (secure)")
			fmt.Printf("   📍 %s\n", keychainLocation())
			// Key lives in keychain only
			setCredential(cfg, "")
		}
	} else {
		setCredential(cfg, apiKey)
		fmt.Println("✅ API key saved to config file (plaintext)")
	}
	return nil
}

// readSecret reads an API key without echoing it when stdin is a
// terminal, falling back to a plain line read when it is not (piped
// input, CI).
func readSecret(reader *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read key: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}
	return readLine(reader), nil
}

func readLine(reader *bufio.Reader) string {
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func setCredential(cfg *config.Config, key string) {
	if cfg.AI.Provider == "openai" {
		cfg.AI.OpenAIKey = key
	} else {
		cfg.AI.GeminiKey = key
	}
}

func providerLabel(cfg *config.Config) string {
	if !cfg.AI.Enabled {
		return "none (keyword-based)"
	}
	return cfg.AI.Provider
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func keychainLocation() string {
	switch runtime.GOOS {
	case "darwin":
		return "macOS Keychain Access.app → 'gitday'"
	case "windows":
		return "Windows Credential Manager → 'gitday'"
	case "linux":
		return "Linux Secret Service (libsecret)"
	default:
		return "OS Keychain"
	}
}
