// Package portrait draws suspect portraits for the case documents.
package portrait

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"

	"github.com/myrjola/murderai/internal/casefile"
	"github.com/myrjola/murderai/internal/config"
	"github.com/myrjola/murderai/internal/errors"
	"github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "img",
	Title: "Image operations",
}

var (
	ErrNoAPIKey       = errors.NewSentinel("OPENAI_API_KEY is required to draw portraits")
	ErrUnknownSuspect = errors.NewSentinel("unknown suspect")
	ErrNoImage        = errors.NewSentinel("no image in response")
)

func init() {
	Generate.Flags().String("out", "./portrait.png", "path to generated image file")
	Generate.Flags().String("difficulty", "medium", "case of the suspect: easy, medium or hard")
}

var Generate = &cobra.Command{
	Use:     "portrait [suspect_id]",
	GroupID: "img",
	Short:   "Generate a suspect portrait",
	Long:    `Generates a portrait of a suspect with Dall-E from the case document`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(os.Environ())
		if err != nil {
			return errors.Wrap(err, "load config")
		}
		if cfg.OpenAI.Offline() {
			return ErrNoAPIKey
		}
		difficulty, _ := cmd.Flags().GetString("difficulty")
		outPath, _ := cmd.Flags().GetString("out")

		d, err := casefile.ParseDifficulty(difficulty)
		if err != nil {
			return errors.Wrap(err, "parse difficulty")
		}
		library, err := casefile.Open(cfg.CasesDir)
		if err != nil {
			return errors.Wrap(err, "load cases")
		}
		c := library.Case(d)
		suspect, ok := c.Suspect(args[0])
		if !ok {
			return errors.Wrap(ErrUnknownSuspect, "find suspect", slog.String("suspect_id", args[0]))
		}

		clientConfig := openai.DefaultConfig(cfg.OpenAI.APIKey)
		if cfg.OpenAI.BaseURL != "" {
			clientConfig.BaseURL = cfg.OpenAI.BaseURL
		}
		img, err := Draw(cmd.Context(), openai.NewClientWithConfig(clientConfig), Prompt(c, suspect))
		if err != nil {
			return err
		}
		if err = save(img, outPath); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "The portrait of %s was saved as %s\n", suspect.Name, outPath)
		return nil
	},
}

// Prompt describes the suspect without giving away who did it.
func Prompt(c *casefile.Case, suspect casefile.Suspect) string {
	gender := ""
	if suspect.Gender != "" {
		gender = suspect.Gender + " "
	}
	return fmt.Sprintf("Film noir character portrait of %s, a %s%s, in the murder mystery %q. %s "+
		"Moody lighting, head and shoulders, no text.", suspect.Name, gender, suspect.Role, c.Title, suspect.Bio)
}

// Draw asks the image model for one square picture.
func Draw(ctx context.Context, client *openai.Client, prompt string) (image.Image, error) {
	request := openai.ImageRequest{ //nolint:exhaustruct // defaults are fine
		Model:          openai.CreateImageModelDallE3,
		Prompt:         prompt,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
		N:              1,
	}
	response, err := client.CreateImage(ctx, request)
	if err != nil {
		return nil, errors.Wrap(err, "create image")
	}
	if len(response.Data) == 0 {
		return nil, ErrNoImage
	}
	imgBytes, err := base64.StdEncoding.DecodeString(response.Data[0].B64JSON)
	if err != nil {
		return nil, errors.Wrap(err, "decode base64")
	}
	img, err := png.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return nil, errors.Wrap(err, "decode png")
	}
	return img, nil
}

func save(img image.Image, outPath string) error {
	file, err := os.Create(outPath)
	if err != nil {
		return errors.Wrap(err, "create file", slog.String("path", outPath))
	}
	defer func(file *os.File) {
		_ = file.Close()
	}(file)
	if err = png.Encode(file, img); err != nil {
		return errors.Wrap(err, "encode png")
	}
	return nil
}
