// ABOUTME: Upload command for the board CLI
// ABOUTME: Validates an image file and prints the URL it was stored at

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cozyrim/3-bella-han-comunity-frontend/internal/client"
	"github.com/cozyrim/3-bella-han-comunity-frontend/internal/validate"
)

var uploadFolder string

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload an image and print its URL",
	Long: `Upload a JPG, PNG, GIF or WebP image (10MB max).

The file goes to --upload-url when set, otherwise to <api>/files/upload.`,
	Args: cobra.ExactArgs(1),
	Run:  runE(runUpload),
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().StringVar(&uploadFolder, "folder", client.DefaultUploadFolder, "Destination folder")
}

func runUpload(ctx context.Context, w io.Writer, args []string) int {
	file, err := validate.ImageFile(args[0])
	if err != nil {
		return invalidInput(w, err)
	}

	return withApp(w, func(a *app) int {
		path, res := a.client.Files.Upload(ctx, file, uploadFolder)
		if IsJSONOutput() {
			printJSON(w, map[string]any{"filePath": nullable(path), "result": res})
			return exitCodeFor(res)
		}
		return report(w, res, func() {
			fmt.Fprintln(w, path)
		})
	})
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
