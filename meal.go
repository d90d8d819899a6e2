package main

import (
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/stolujeme/stolu-cli/internal/api"
)

// photoParallelism bounds concurrent photo downloads.
const photoParallelism = 3

func newMealCmd() *cobra.Command {
	var photosDir string

	cmd := &cobra.Command{
		Use:   "meal <uuid>",
		Short: "Show a meal profile",
		Long: `Show a meal's names, canteen, course and ratings. Requires login.

With --photos, every photo of the meal is downloaded into the given
directory as <photo-uuid>.<ext>.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMeal(cmd, args[0], photosDir)
		},
	}

	cmd.Flags().StringVar(&photosDir, "photos", "", "download photos into this directory")

	return cmd
}

// mealTable renders a meal as field/value rows.
type mealTable struct{ m *api.Meal }

func (t mealTable) Headers() []string { return []string{"FIELD", "VALUE"} }

func (t mealTable) Rows() [][]string {
	rows := [][]string{
		{"uuid", t.m.UUID},
		{"name", t.m.Name()},
		{"canteen", t.m.Canteen},
		{"course", t.m.Course},
	}

	if len(t.m.Names) > 1 {
		rows = append(rows, []string{"also known as", strings.Join(t.m.Names[1:], ", ")})
	}

	if t.m.Description != "" {
		rows = append(rows, []string{"description", t.m.Description})
	}

	rows = append(rows,
		[]string{"your rating", formatRating(t.m.UserRating)},
		[]string{"global rating", formatRating(t.m.GlobalRating)},
		[]string{"photos", strconv.Itoa(len(t.m.Photos))},
	)

	return rows
}

func formatRating(r float64) string {
	if r == 0 {
		return "-"
	}

	return strconv.FormatFloat(r, 'f', 1, 64)
}

func runMeal(cmd *cobra.Command, mealUUID, photosDir string) error {
	cc := mustCLIContext(cmd.Context())
	ctx := cmd.Context()

	app, err := newApp(ctx, cc)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.requireAuth(); err != nil {
		return err
	}

	meal, out, err := app.Client.Meal(ctx, mealUUID)
	if err != nil {
		return err
	}

	if err := app.check(out); err != nil {
		return err
	}

	var data any = meal
	if cc.Cfg.UI.Output == outputTable {
		data = mealTable{m: meal}
	}

	if err := printResult(cc.Stdout, cc.Cfg.UI.Output, data); err != nil {
		return err
	}

	if photosDir == "" {
		return nil
	}

	return downloadPhotos(cmd, app, meal, photosDir)
}

func downloadPhotos(cmd *cobra.Command, app *App, meal *api.Meal, dir string) error {
	cc := mustCLIContext(cmd.Context())

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating photo directory: %w", err)
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(photoParallelism)

	for _, photo := range meal.Photos {
		g.Go(func() error {
			data, out, err := app.Client.MealPhoto(ctx, meal.UUID, photo)
			if err != nil {
				return err
			}

			if err := app.check(out); err != nil {
				return err
			}

			ct, _ := out.Success.Content["contentType"].(string)
			path := filepath.Join(dir, photo+photoExtension(ct))

			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}

			cc.Logger.Debug("photo saved", slog.String("path", path), slog.Int("bytes", len(data)))
			cc.Statusf("Saved %s (%s)\n", path, formatSize(int64(len(data))))

			return nil
		})
	}

	return g.Wait()
}

// photoExtension picks a file extension for a photo's content type.
func photoExtension(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ".bin"
	}

	switch mediaType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	}

	if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
		return exts[0]
	}

	return ".bin"
}
