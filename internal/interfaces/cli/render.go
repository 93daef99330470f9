package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/TrajMap/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/TrajMap/internal/render"
	"github.com/turtacn/TrajMap/pkg/errors"
)

type renderOptions struct {
	kind   string
	format string
	input  string
	out    string
}

// NewRenderCmd encodes a layer.  With --input it colours a saved backend
// response offline; otherwise it fetches the layer from the backend.
func NewRenderCmd() *cobra.Command {
	o := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a layer as json, geojson, png, svg or html",
		Example: "  trajmap render --kind clusters --format png --out clusters.png\n" +
			"  trajmap render --kind filtered --input filtered.json --format geojson",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, o)
		},
	}
	cmd.Flags().StringVarP(&o.kind, "kind", "k", string(render.KindClusters), "layer kind (raw, filtered, partitioned, clusters)")
	cmd.Flags().StringVarP(&o.format, "format", "f", "", "output format (default: render.default_format)")
	cmd.Flags().StringVarP(&o.input, "input", "i", "", "saved backend response to render instead of calling the backend")
	cmd.Flags().StringVar(&o.out, "out", "-", "output file, - for stdout")
	return cmd
}

func runRender(cmd *cobra.Command, o *renderOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	kind, err := render.ParseKind(o.kind)
	if err != nil {
		return err
	}
	formatName := o.format
	if formatName == "" {
		formatName = cliCtx.Config.Render.DefaultFormat
	}
	format, err := render.ParseFormat(formatName)
	if err != nil {
		return err
	}

	var (
		data      []byte
		polylines int
		colours   int
	)
	if o.input != "" {
		raw, err := os.ReadFile(o.input)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeBadRequest, "cannot read input").WithDetail(o.input)
		}
		layer, err := render.FromPayload(kind, raw, cliCtx.Config.Render.RawColor)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := render.Encode(&buf, layer, format, cliCtx.Config.Render.Options()); err != nil {
			return err
		}
		data, polylines, colours = buf.Bytes(), len(layer.Polylines), layer.Colours
	} else {
		ctx, cancel := commandContext(cmd, cliCtx)
		defer cancel()
		rendered, err := cliCtx.Service.Render(ctx, kind, format)
		if err != nil {
			return err
		}
		data, polylines, colours = rendered.Data, rendered.Polylines, rendered.Colours
	}

	cliCtx.Logger.Debug("layer rendered",
		logging.LayerKind(kind.String()),
		logging.Format(format.String()),
		logging.Int("polylines", polylines),
		logging.Int("colours", colours),
		logging.Bool("offline", o.input != ""),
	)

	if o.out == "" || o.out == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := writeFile(o.out, data); err != nil {
		return err
	}
	PrintSuccess(cmd, fmt.Sprintf("wrote %s layer (%d polylines, %d colours) to %s", kind, polylines, colours, o.out))
	return nil
}

func writeFile(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "cannot create output file").WithDetail(path)
	}
	if _, err := io.Copy(f, bytes.NewReader(data)); err != nil {
		f.Close()
		return errors.Wrap(err, errors.ErrCodeInternal, "cannot write output file").WithDetail(path)
	}
	return f.Close()
}

//Personal.AI order the ending
