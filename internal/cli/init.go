package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Start the server with integration instructions",
	Long: `Start the leadlift server and show instructions for wiring your
site's tracking calls to it.

Example:
  leadlift init
  leadlift init --port 8080`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().IntVarP(&port, "port", "p", 8080, "port to listen on")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	framework, err := promptFramework()
	if err != nil {
		return err
	}

	srv, err := buildServer(cmd)
	if err != nil {
		return err
	}
	defer srv.Close()

	printStartupInstructions(framework, port, srv.Token())

	// Start quietly, we printed our own message
	return srv.StartQuiet()
}

func promptFramework() (string, error) {
	frameworks := []string{
		"HTML (vanilla JavaScript)",
		"React / Next.js",
		"Vue",
		"Svelte",
		"Laravel / Django / Other",
	}

	prompt := promptui.Select{
		Label: "Your frontend",
		Items: frameworks,
		Size:  5,
	}

	idx, _, err := prompt.Run()
	if err != nil {
		if err == promptui.ErrInterrupt {
			os.Exit(0)
		}
		return "", err
	}

	switch idx {
	case 0:
		return "html", nil
	case 1:
		return "react", nil
	case 2:
		return "vue", nil
	case 3:
		return "svelte", nil
	default:
		return "other", nil
	}
}

func printStartupInstructions(framework string, port int, token string) {
	base := fmt.Sprintf("http://localhost:%d", port)

	fmt.Println()
	fmt.Printf("Server running at %s\n", base)
	fmt.Printf("Dashboard: %s/dashboard?token=%s\n", base, token)
	fmt.Println()
	fmt.Println(strings.Repeat("-", 60))
	fmt.Println()
	fmt.Println("Wire your site to leadlift:")
	fmt.Println()

	switch framework {
	case "react":
		fmt.Println("  // on page view")
		fmt.Printf("  fetch('%s/api/track', { method: 'POST',\n", base)
		fmt.Println("    body: JSON.stringify({ type: 'page_view' }) })")
		fmt.Println()
		fmt.Println("  // pick the CTA variant")
		fmt.Printf("  const { variant_id, config } =\n")
		fmt.Printf("    await (await fetch('%s/api/ab/cta_button_test/variant')).json()\n", base)
	default:
		fmt.Println("  <script>")
		fmt.Printf("    fetch('%s/api/track', { method: 'POST',\n", base)
		fmt.Println("      body: JSON.stringify({ type: 'page_view' }) })")
		fmt.Println("  </script>")
	}

	fmt.Println()
	fmt.Println("Conversions:")
	fmt.Printf("  POST %s/api/ab/<test_id>/convert\n", base)
	fmt.Println()
	fmt.Println(strings.Repeat("-", 60))
	fmt.Println()
	fmt.Println("Press Ctrl+C to stop")
}
