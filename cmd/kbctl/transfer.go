package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"knowledgebase/internal/utils"
)

var (
	exportWorkspace string
	exportOut       string
	exportZip       bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a workspace as markdown files with frontmatter",
	Long: `export writes every document as {folder path}/{slug}.md under --out.
With --zip, --out names a zip archive instead of a directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := exportOut
		if exportZip {
			tmp, err := os.MkdirTemp("", "kb-export-*")
			if err != nil {
				return err
			}
			defer os.RemoveAll(tmp)
			dir = tmp
		}

		result, err := app.kb.Exporter.Export(cmd.Context(), exportWorkspace, dir)
		if err != nil {
			return err
		}

		if exportZip {
			f, err := os.Create(exportOut)
			if err != nil {
				return err
			}
			if err := utils.WriteZipFromDirectory(dir, f); err != nil {
				f.Close()
				return fmt.Errorf("write archive: %w", err)
			}
			if err := f.Close(); err != nil {
				return err
			}
		}

		app.logger.Info("workspace exported", "workspace_id", exportWorkspace, "documents", result.Documents, "out", exportOut)
		return nil
	},
}

var (
	importWorkspace string
	importDir       string
	importUser      string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Create documents from a directory of markdown files",
	Long: `import creates one document per *.md file under --dir. Each file's
directory becomes its folder path; missing folders are created.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := app.kb.Importer.Import(cmd.Context(), importWorkspace, importUser, importDir)
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportWorkspace, "workspace", "", "workspace to export")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output directory (or archive with --zip)")
	exportCmd.Flags().BoolVar(&exportZip, "zip", false, "write a zip archive")
	_ = exportCmd.MarkFlagRequired("workspace")
	_ = exportCmd.MarkFlagRequired("out")

	importCmd.Flags().StringVar(&importWorkspace, "workspace", "", "workspace to import into")
	importCmd.Flags().StringVar(&importDir, "dir", "", "directory of markdown files")
	importCmd.Flags().StringVar(&importUser, "as-user", "", "user recorded as creator")
	_ = importCmd.MarkFlagRequired("workspace")
	_ = importCmd.MarkFlagRequired("dir")
	_ = importCmd.MarkFlagRequired("as-user")
}
