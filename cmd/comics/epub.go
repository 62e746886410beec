package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kerbaras/comics/pkg/integrations"
	"github.com/spf13/cobra"
)

var epubCmd = &cobra.Command{
	Use:   "epub [series-name]",
	Short: "Export chapters to EPUB",
	Long: `Decode chapters and write each one as an EPUB sized for your e-reader.

Examples:
  comics epub "Akira" --chapters 1-3,5
  comics epub "Akira" --device kindle-paperwhite3 --out ~/kindle

Use 'comics epub --list-devices' to see all supported devices.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if listDevices, _ := cmd.Flags().GetBool("list-devices"); listDevices {
			printDeviceList()
			return nil
		}
		if len(args) == 0 {
			return fmt.Errorf("series name is required (use --list-devices to see supported devices)")
		}

		deviceID, _ := cmd.Flags().GetString("device")
		selection, _ := cmd.Flags().GetString("chapters")
		out, _ := cmd.Flags().GetString("out")

		env, err := openLibrary(false)
		if err != nil {
			return err
		}
		defer env.Close()

		exporter := env.exporter()
		if deviceID != "" || out != "" {
			dir := env.cfg.Export.Dir
			if out != "" {
				dir = out
			}
			options := integrations.ExportOptions{MaxWidth: env.cfg.Export.MaxWidth, MaxHeight: env.cfg.Export.MaxHeight}
			if deviceID != "" {
				device, err := integrations.GetDevice(deviceID)
				if err != nil {
					return err
				}
				options = device.ExportOptions()
				fmt.Printf("📱 Optimizing for %s\n", device.Name)
			}
			exporter = integrations.NewEPubExporter(dir, options)
		}

		series, err := env.findSeries(args[0])
		if err != nil {
			return err
		}

		indexes, err := parseChapterSelection(selection, len(series.Chapters))
		if err != nil {
			return err
		}

		for _, i := range indexes {
			chapter := series.Chapters[i]
			loaded, err := env.dispatcher.Dispatch(cmd.Context(), chapter.FilePath, chapter)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", chapter.Title, err)
			}
			if len(loaded.Pages) == 0 {
				fmt.Printf("⏭️  %s has no pages, skipping\n", chapter.Title)
				continue
			}

			path, err := exporter.Export(series, loaded)
			if err != nil {
				return err
			}
			fmt.Printf("✅ %s (%d pages) -> %s\n", chapter.Title, len(loaded.Pages), path)
		}
		return nil
	},
}

func init() {
	epubCmd.Flags().StringP("device", "d", "", "Target device, sets page size and grayscale")
	epubCmd.Flags().StringP("chapters", "c", "", "Chapter selection (e.g., '1-10' or '1,3,5'), default all")
	epubCmd.Flags().StringP("out", "o", "", "Output directory (default export.dir)")
	epubCmd.Flags().Bool("list-devices", false, "List all supported devices")
}

func printDeviceList() {
	fmt.Println("📱 Supported Devices:")
	for _, line := range integrations.ListDevices() {
		fmt.Printf("  %s\n", line)
	}
}

// parseChapterSelection turns "1-3,5" into chapter indexes. Chapters count
// from 1 on the command line; an empty selection means every chapter.
func parseChapterSelection(selection string, total int) ([]int, error) {
	if strings.TrimSpace(selection) == "" {
		all := make([]int, total)
		for i := range all {
			all[i] = i
		}
		return all, nil
	}

	seen := make(map[int]bool)
	var indexes []int
	add := func(n int) error {
		if n < 1 || n > total {
			return fmt.Errorf("chapter %d out of range 1-%d", n, total)
		}
		if !seen[n] {
			seen[n] = true
			indexes = append(indexes, n-1)
		}
		return nil
	}

	for _, part := range strings.Split(selection, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		from, to, isRange := strings.Cut(part, "-")
		first, err := strconv.Atoi(strings.TrimSpace(from))
		if err != nil {
			return nil, fmt.Errorf("invalid chapter %q", part)
		}
		last := first
		if isRange {
			if last, err = strconv.Atoi(strings.TrimSpace(to)); err != nil {
				return nil, fmt.Errorf("invalid chapter range %q", part)
			}
		}
		if last < first {
			return nil, fmt.Errorf("invalid chapter range %q", part)
		}

		for n := first; n <= last; n++ {
			if err := add(n); err != nil {
				return nil, err
			}
		}
	}
	return indexes, nil
}
