package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	gcs "cloud.google.com/go/storage"
	vision "cloud.google.com/go/vision/apiv1"
	"github.com/fatih/color"
	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"github.com/ridge/must/v2"
	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"github.com/lenor-project/lenor/annotator/impl"
	implDocumentai "github.com/lenor-project/lenor/annotator/impl/documentai"
	"github.com/lenor-project/lenor/annotator/impl/font"
	lenorGenai "github.com/lenor-project/lenor/annotator/impl/genai"
	"github.com/lenor-project/lenor/annotator/impl/storage"
	"github.com/lenor-project/lenor/annotator/impl/tesseract"
	"github.com/lenor-project/lenor/pkg/annotate"
	"github.com/lenor-project/lenor/pkg/config"
	"github.com/lenor-project/lenor/pkg/env"
	lenorOpenai "github.com/lenor-project/lenor/pkg/openai"
)

var log = logrus.WithField("component", "main")

func main() {
	env.Load()
	logrus.SetLevel(must.OK1(logrus.ParseLevel(env.StringVariable("LOG_LEVEL", "info"))))
	color.NoColor = color.NoColor || env.BoolVariable("NO_COLOR", false)

	source := impl.OCRSource(env.StringVariable("OCR_SOURCE", config.SourceVision))
	profile := must.OK1(config.LoadOrDefault(env.StringVariable("LENOR_CONFIG", "")).Profile(string(source)))
	fontProvider := must.OK1(font.New(env.StringVariable("LABEL_FONT", "")))

	pages := must.OK1(readPages(
		splitPaths(env.StringVariable("PAGE_IMAGES", "")),
		splitPaths(env.StringVariable("PAGE_OCR", "")),
	))
	request := impl.Request{
		Pages:  pages,
		Render: env.BoolVariable("RENDER", true),
	}
	if reportsFile := env.StringVariable("REPORTS_FILE", ""); reportsFile != "" {
		request.Reports = string(must.OK1(os.ReadFile(reportsFile)))
	} else {
		request.Issues = string(must.OK1(os.ReadFile(env.RequiredStringVariable("ISSUES_FILE"))))
	}

	ctx := context.Background()
	clients := impl.Clients{}

	if needsOCR(pages) {
		switch source {
		case impl.OCRSourceVision:
			visionClient := must.OK1(vision.NewImageAnnotatorClient(ctx))
			defer visionClient.Close()
			clients.Vision = visionClient
		case impl.OCRSourceDocumentAI:
			documentaiClient := must.OK1(documentai.NewDocumentProcessorClient(ctx, option.WithEndpoint(env.RequiredStringVariable("DOCUMENTAI_ENDPOINT"))))
			defer documentaiClient.Close()
			clients.Documentai = documentaiClient
			clients.DocumentaiSpec = implDocumentai.Spec{
				ProjectID:   env.RequiredStringVariable("GCP_PROJECT_ID"),
				Location:    env.RequiredStringVariable("DOCUMENTAI_LOCATION"),
				ProcessorID: env.RequiredStringVariable("DOCUMENTAI_PROCESSOR_ID"),
			}
		case impl.OCRSourceTesseract:
			clients.Tesseract = tesseract.New(strings.Split(env.StringVariable("TESSERACT_LANGUAGES", "eng"), "+")...)
		}
	}

	if request.Issues != "" {
		keys := &secrets{}
		defer keys.Close()

		if geminiKey := keys.key(ctx, "GEMINI_API_KEY", "GEMINI_API_KEY_SECRET_NAME"); geminiKey != "" {
			genaiClient := must.OK1(genai.NewClient(ctx, option.WithAPIKey(geminiKey)))
			defer genaiClient.Close()
			clients.Genai = lenorGenai.New(genaiClient)
		}
		if openaiKey := keys.key(ctx, "OPENAI_API_KEY", "OPENAI_KEY_SECRET_NAME"); openaiKey != "" {
			clients.Openai = lenorOpenai.NewAdapter(openai.NewClient(openaiKey))
		}
	}

	annotator := must.OK1(impl.New(
		source,
		profile,
		clients,
		impl.Models{
			Genai:  env.StringVariable("GENAI_MODEL", string(lenorGenai.GenaiModelFlash)),
			Openai: env.StringVariable("OPENAI_MODEL", openai.GPT4),
		},
		fontProvider,
		time.Second/2, /* =backoffDuration */
		env.IntVariable("CONCURRENCY", 8),
	))

	result, err := annotator.Annotate(ctx, request)
	if err != nil {
		log.WithError(err).Fatal("Failed to annotate essay")
	}
	if result.ReportErr != nil {
		log.WithError(result.ReportErr).Warn("Error reports could not be parsed")
	}

	var save saveFunc
	if bucket := env.StringVariable("OUTPUT_BUCKET", ""); bucket != "" {
		storageClient := must.OK1(gcs.NewClient(ctx))
		defer storageClient.Close()
		prefix := env.StringVariable("OUTPUT_PREFIX", "essay-"+uuid.NewString())
		save = bucketSaver(ctx, storage.New(storageClient), bucket, prefix)
		log.WithFields(logrus.Fields{"bucket": bucket, "prefix": prefix}).Info("Uploading annotations")
	} else {
		dir := env.StringVariable("OUTPUT_DIR", "out")
		save = must.OK1(localSaver(dir))
		log.WithField("dir", dir).Info("Writing annotations")
	}
	must.OK(writeResult(save, result))
	printSummary(os.Stdout, result)
}

func splitPaths(value string) []string {
	paths := []string{}
	for _, file := range strings.Split(value, ",") {
		if file = strings.TrimSpace(file); file != "" {
			paths = append(paths, file)
		}
	}
	return paths
}

// readPages pairs page images with saved OCR responses by position. Either list
// may be shorter than the other.
func readPages(imagePaths []string, ocrPaths []string) ([]impl.Page, error) {
	pages := make([]impl.Page, max(len(imagePaths), len(ocrPaths)))
	for i, file := range imagePaths {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read page image: %w", err)
		}
		pages[i].Image = data
	}
	for i, file := range ocrPaths {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read saved OCR response: %w", err)
		}
		pages[i].OCR = data
	}
	return pages, nil
}

func needsOCR(pages []impl.Page) bool {
	for _, page := range pages {
		if len(page.OCR) == 0 {
			return true
		}
	}
	return false
}

type output struct {
	PageLineCounts []int                            `json:"pageLineCounts"`
	Annotations    map[string][]annotate.Annotation `json:"annotations"`
}

// saveFunc stores one output file under name.
type saveFunc func(name string, data []byte) error

func localSaver(dir string) (saveFunc, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return func(name string, data []byte) error {
		return os.WriteFile(filepath.Join(dir, name), data, 0o644)
	}, nil
}

func bucketSaver(ctx context.Context, client storage.Client, bucket string, prefix string) saveFunc {
	return func(name string, data []byte) error {
		return client.SaveBytes(ctx, bucket, path.Join(prefix, name), data)
	}
}

// writeResult saves annotations.json, grouped by error type, and page-<n>.png
// for every rendered page.
func writeResult(save saveFunc, result *impl.Result) error {
	data, err := json.MarshalIndent(output{
		PageLineCounts: result.PageLineCounts,
		Annotations:    annotate.GroupByType(result.Annotations),
	}, "", "  ")
	if err != nil {
		return err
	}
	if err := save("annotations.json", data); err != nil {
		return err
	}

	for i, page := range result.Pages {
		if page == nil {
			continue
		}
		if err := save(fmt.Sprintf("page-%d.png", i+1), page); err != nil {
			return err
		}
	}
	return nil
}

type secrets struct {
	client *secretmanager.Client
}

// key returns the API key from the environment, or from GCP Secret Manager when
// only the secret name is set. Empty when neither is configured.
func (s *secrets) key(ctx context.Context, keyVariable string, secretVariable string) string {
	// Direct API keys are used for local development.
	if key := env.StringVariable(keyVariable, ""); key != "" {
		return key
	}
	secretName := env.StringVariable(secretVariable, "")
	if secretName == "" {
		return ""
	}
	if s.client == nil {
		s.client = must.OK1(secretmanager.NewClient(ctx))
	}
	return secretFromGCP(s.client, ctx, secretName)
}

func (s *secrets) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

func secretFromGCP(secretmanagerClient *secretmanager.Client, ctx context.Context, secretName string) string {
	secretValue := must.OK1(secretmanagerClient.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("projects/%s/secrets/%s/versions/latest",
			env.RequiredStringVariable("GCP_PROJECT_ID"),
			secretName,
		),
	}))
	return string(secretValue.Payload.Data)
}
