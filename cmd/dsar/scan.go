package main

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"dsar/internal/detection/engine"
	detection "dsar/internal/detection/models"
)

const pdfMIME = "application/pdf"

func newScanCmd(root *rootOptions) *cobra.Command {
	var (
		mode     string
		source   string
		mimeType string
		llm      bool
		ocr      bool
	)
	cmd := &cobra.Command{
		Use:   "scan <path|->",
		Short: "Run detection over one file or stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}
			contentMode, err := detection.ParseContentMode(mode)
			if err != nil {
				return err
			}
			if llm && cfg.OpenAI.APIKey == "" {
				return fmt.Errorf("--llm requires DSAR_OPENAI_API_KEY")
			}

			name, data, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			eng, err := newEngine(cfg, prometheus.NewRegistry(), logger)
			if err != nil {
				return err
			}

			in := engine.Input{
				Mode:         contentMode,
				MIMEType:     mimeType,
				FileName:     name,
				SourceSystem: source,
				EnableOCR:    ocr || cfg.Detection.EnableOCR,
				EnableLLM:    llm || cfg.Detection.EnableLLM,
			}
			if in.MIMEType == "" {
				in.MIMEType = mimeFor(name)
			}
			if in.MIMEType == pdfMIME {
				in.Document = data
			} else {
				in.Text = string(data)
			}

			report, err := eng.Detect(cmd.Context(), in)
			if err != nil {
				return err
			}
			view := newScanView(name, contentMode, report)
			if root.json {
				return writeJSON(cmd.OutOrStdout(), view)
			}
			return view.writeTable(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&mode, "mode", string(detection.ModeContentScan), "METADATA_ONLY, CONTENT_SCAN or FULL_CONTENT")
	cmd.Flags().StringVar(&source, "source", "", "source system name used by metadata rules")
	cmd.Flags().StringVar(&mimeType, "mime", "", "MIME type (default: from the file extension)")
	cmd.Flags().BoolVar(&llm, "llm", false, "ask the generative classifier for categories")
	cmd.Flags().BoolVar(&ocr, "ocr", false, "request OCR for image documents when a recognizer is configured")
	return cmd
}

// readInput reads path, or stdin when path is "-".
func readInput(stdin io.Reader, path string) (string, []byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", nil, fmt.Errorf("read stdin: %w", err)
		}
		return "stdin", data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	return filepath.Base(path), data, nil
}

func mimeFor(name string) string {
	t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if t == "" {
		return "text/plain"
	}
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = t[:i]
	}
	return t
}
