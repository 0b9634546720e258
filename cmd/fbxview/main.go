package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	fbxview "github.com/flywave/go-fbxview"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	verbose    bool
	cfg        *fbxview.Config
}

func (o *options) load() error {
	path := o.configPath
	if path == "" {
		p, err := homedir.Expand(fbxview.DefaultConfigPath)
		if err != nil {
			return err
		}
		if _, err := os.Stat(p); err != nil {
			o.cfg = fbxview.DefaultConfig()
			path = ""
		} else {
			path = p
		}
	}
	if path != "" {
		cfg, err := fbxview.LoadConfig(path)
		if err != nil {
			return err
		}
		o.cfg = cfg
	}
	if o.verbose {
		o.cfg.Log.Level = "debug"
	}
	fbxview.SetLogger(o.cfg.Logger())
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:           "fbxview",
		Short:         "Read placed meshes from FBX documents, project and export them",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.load()
		},
	}
	root.PersistentFlags().StringVar(&o.configPath, "config", "", "config file (default "+fbxview.DefaultConfigPath+")")
	root.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newConvertCmd(o),
		newInspectCmd(o),
		newRenderCmd(o),
		newExportCmd(o),
	)
	return root
}

func newConvertCmd(o *options) *cobra.Command {
	var force, external bool
	cmd := &cobra.Command{
		Use:   "convert <input.fbx> <output.json>",
		Short: "Write the document tree of an FBX file as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if external {
				o.cfg.Convert.InProcess = false
			}
			conv := o.cfg.Converter()
			return conv.Convert(cmd.Context(), args[0], args[1], force || o.cfg.Convert.Overwrite)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing output")
	cmd.Flags().BoolVar(&external, "external", false, "use the configured converter command")
	return cmd
}

func newInspectCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "List the meshes of a file with their placement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meshes, err := fbxview.Load(cmd.Context(), args[0], o.cfg)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%d meshes\n", len(meshes))
			for i, m := range meshes {
				bx := m.Bounds()
				fmt.Fprintf(w, "#%d vertices=%d edges=%d center=%v angle=%v scale=%v bounds=%v\n",
					i, m.NumVertices(), len(m.Edges()), m.Center(), m.Angle(), m.Scale(), *bx.Array())
			}
			return nil
		},
	}
}

func newRenderCmd(o *options) *cobra.Command {
	var out string
	var hide []int
	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Draw the projected wireframe to an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meshes, err := fbxview.Load(cmd.Context(), args[0], o.cfg)
			if err != nil {
				return err
			}
			canvas, err := o.cfg.Canvas()
			if err != nil {
				return err
			}
			for _, i := range hide {
				if i >= 0 && i < len(meshes) {
					meshes[i].Disable()
				}
			}
			for _, m := range meshes {
				m.SendToRender(canvas)
			}
			fbxview.Logger().Debug("rendering", "meshes", len(meshes), "out", out)
			return canvas.Save(out)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "out.png", "image path (png, jpg, gif, bmp, tif)")
	cmd.Flags().IntSliceVar(&hide, "hide", nil, "mesh indices to leave out")
	return cmd
}

func newExportCmd(o *options) *cobra.Command {
	var out string
	var force bool
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write the placed meshes as an mst mesh",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meshes, err := fbxview.Load(cmd.Context(), args[0], o.cfg)
			if err != nil {
				return err
			}
			return fbxview.WriteMst(out, meshes, force)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "out.mst", "output path")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing output")
	return cmd
}
