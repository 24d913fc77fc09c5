package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	derrors "github.com/matzehuels/dreamscape/pkg/errors"
	"github.com/matzehuels/dreamscape/pkg/gallery"
	"github.com/matzehuels/dreamscape/pkg/pipeline"
)

func (c *CLI) galleryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gallery",
		Short: "List, show, browse and delete stored pieces",
	}
	cmd.AddCommand(c.galleryListCommand())
	cmd.AddCommand(c.galleryShowCommand())
	cmd.AddCommand(c.galleryDeleteCommand())
	cmd.AddCommand(c.galleryBrowseCommand())
	return cmd
}

// withGallery opens the gallery through a runner without ledger access and
// calls fn with it.
func (c *CLI) withGallery(ctx context.Context, fn func(*pipeline.Runner) error) error {
	runner, err := c.newRunner(ctx, runnerOpts{gallery: true, noCache: true})
	if err != nil {
		return err
	}
	defer c.closeRunner(runner)
	return fn(runner)
}

// parseFilter builds a listing filter from flag values.
func parseFilter(sourceType string, limit, offset int) (gallery.Filter, error) {
	f := gallery.Filter{Limit: limit, Offset: offset}
	if sourceType != "" {
		st, err := gallery.ParseSourceType(sourceType)
		if err != nil {
			return f, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "%v", err)
		}
		f.SourceType = &st
	}
	if limit < 1 || limit > gallery.MaxLimit {
		return f, derrors.New(derrors.ErrCodeInvalidInput, "limit must be between 1 and %d", gallery.MaxLimit)
	}
	if offset < 0 {
		return f, derrors.New(derrors.ErrCodeInvalidInput, "offset must not be negative")
	}
	return f, nil
}

func (c *CLI) galleryListCommand() *cobra.Command {
	var (
		sourceType string
		limit      int
		offset     int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pieces, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseFilter(sourceType, limit, offset)
			if err != nil {
				return err
			}
			return c.withGallery(cmd.Context(), func(r *pipeline.Runner) error {
				pieces, total, err := r.Store.List(cmd.Context(), f)
				if err != nil {
					return err
				}
				if len(pieces) == 0 {
					printInfo("No pieces found")
					return nil
				}
				for _, p := range pieces {
					fmt.Printf("%s  %s  %s\n",
						StyleDim.Render(p.ID),
						StyleValue.Render(p.Title),
						StyleDim.Render(p.SourceType.String()+" · "+p.Style.String()))
				}
				printDetail("Showing %d-%d of %d", f.Offset+1, f.Offset+len(pieces), total)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&sourceType, "source-type", "", "only pieces of this source: "+strings.Join(gallery.SourceTypeNames(), ", "))
	cmd.Flags().IntVarP(&limit, "limit", "n", gallery.DefaultLimit, fmt.Sprintf("maximum pieces (1-%d)", gallery.MaxLimit))
	cmd.Flags().IntVar(&offset, "offset", 0, "pieces to skip")
	return cmd
}

func (c *CLI) galleryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a stored piece",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := derrors.ValidatePieceID(args[0]); err != nil {
				return err
			}
			return c.withGallery(cmd.Context(), func(r *pipeline.Runner) error {
				p, err := r.Store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printPiece(p)
				return nil
			})
		},
	}
}

func (c *CLI) galleryDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a piece and its artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if err := derrors.ValidatePieceID(id); err != nil {
				return err
			}
			return c.withGallery(cmd.Context(), func(r *pipeline.Runner) error {
				if err := r.Store.Delete(cmd.Context(), id); err != nil {
					return err
				}
				if err := r.Artifacts.Remove(id); err != nil {
					printWarning("Could not remove artifacts: %v", err)
				}
				printSuccess("Deleted %s", id)
				return nil
			})
		},
	}
}

func (c *CLI) galleryBrowseCommand() *cobra.Command {
	var sourceType string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse pieces interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseFilter(sourceType, gallery.MaxLimit, 0)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return c.withGallery(ctx, func(r *pipeline.Runner) error {
				pieces, total, err := r.Store.List(ctx, f)
				if err != nil {
					return err
				}

				final, err := tea.NewProgram(NewGalleryListModel(pieces, total), tea.WithContext(ctx)).Run()
				if err != nil {
					return fmt.Errorf("browse: %w", err)
				}
				m, ok := final.(GalleryListModel)
				if !ok || m.Selected == nil {
					return nil
				}

				p, err := r.Store.Get(ctx, m.Selected.ID)
				if err != nil {
					return err
				}
				printPiece(p)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&sourceType, "source-type", "", "only pieces of this source")
	return cmd
}
