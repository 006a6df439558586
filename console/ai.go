package console

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/kochabx/workforce/api"
	"github.com/kochabx/workforce/errors"
)

func (c *Console) aiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "ai",
		Short:       "Generate sample data",
		Annotations: route("/generated-data"),
	}

	var (
		req api.GenerateRequest
		out string
	)
	generate := &cobra.Command{
		Use:   "generate",
		Short: "Generate records for a topic",
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := c.env.API.AI.Generate(cmd.Context(), req)
			if err != nil {
				return err
			}
			ds := &api.Dataset{Topic: req.Topic, RecordCount: req.RecordCount, Records: records}
			return c.emit(ds, out)
		},
	}
	generate.Flags().StringVarP(&req.Topic, "topic", "t", "", "topic, at most 50 characters")
	generate.Flags().IntVar(&req.PropertyCount, "properties", 5, "properties per record, 3 to 10")
	generate.Flags().IntVar(&req.RecordCount, "records", 5, "records to generate, 1 to 50")
	generate.Flags().StringVarP(&out, "out", "o", "", "export to this JSON file, - for <topic>.json")

	var (
		in      string
		topic   string
		count   int
		moreOut string
	)
	more := &cobra.Command{
		Use:   "more",
		Short: "Generate more records shaped like an exported file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := c.loadDataset(in)
			if err != nil {
				return err
			}
			if topic != "" {
				ds.Topic = topic
			}
			ds.RecordCount = count

			n, err := ds.More(cmd.Context(), c.env.API.AI)
			if err != nil {
				return err
			}
			c.printf("Additional data generated successfully (%d records)\n", n)

			if moreOut == "" {
				moreOut = in
			}
			return c.emit(ds, moreOut)
		},
	}
	more.Flags().StringVarP(&in, "in", "i", "", "previously exported JSON file")
	more.Flags().StringVarP(&topic, "topic", "t", "", "topic (default from the file name)")
	more.Flags().IntVar(&count, "records", 5, "records to add, 1 to 50")
	more.Flags().StringVarP(&moreOut, "out", "o", "", "export to this file (default overwrite --in)")
	_ = more.MarkFlagRequired("in")

	cmd.AddCommand(generate, more)
	return cmd
}

// emit 写文件或打印到终端
func (c *Console) emit(ds *api.Dataset, path string) error {
	if path == "" {
		return ds.Export(c.out)
	}
	if path == "-" {
		path = ds.Filename()
	}

	f, err := c.fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Wrap(err, errors.UnknownCode, "open %s", path)
	}
	defer f.Close()

	if err := ds.Export(f); err != nil {
		return errors.Wrap(err, errors.UnknownCode, "write %s", path)
	}
	c.printf("Exported %d records to %s\n", len(ds.Records), path)
	return nil
}

func (c *Console) loadDataset(path string) (*api.Dataset, error) {
	data, err := afero.ReadFile(c.fs, path)
	if err != nil {
		return nil, errors.Wrap(err, errors.UnknownCode, "read %s", path)
	}

	var records []api.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.BadRequest("%s is not an exported record list: %v", path, err)
	}
	return &api.Dataset{
		Topic:   strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Records: records,
	}, nil
}
