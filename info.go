package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dot5enko/repak/reader"
	"github.com/dot5enko/repak/schema"
)

var cmdInfo = &cobra.Command{
	Use:   "info <file.rpak>",
	Short: "Print the header and tables of a container",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

var flagInfo struct {
	Pages bool
}

func init() {
	cmdInfo.Flags().BoolVar(&flagInfo.Pages, "pages", false, "List every page")
}

func runInfo(cmd *cobra.Command, args []string) error {

	c, err := reader.Open(args[0])
	if err != nil {
		return err
	}

	h := c.Header

	color.Green("%s", args[0])
	field("profile", h.Profile)
	field("flags", fmt.Sprintf("0x%04x", h.Flags))
	field("size", fmt.Sprintf("%s (%s decompressed)", humanize.Bytes(h.CompressedSize), humanize.Bytes(h.DecompressedSize)))
	field("pages", len(c.Pages))
	field("descriptors", len(c.Descriptors))
	field("guid descriptors", len(c.GuidDescriptors))
	field("relations", len(c.Relations))
	for _, p := range c.StarpakPaths {
		field("starpak", p)
	}
	for _, p := range c.OptStarpakPaths {
		field("optional starpak", p)
	}

	if flagInfo.Pages {
		for idx, page := range c.Pages {
			seg := c.Segments[page.SegmentIndex]
			fmt.Printf("  page %-4d type %-3d align %-3d %s\n", idx, seg.TypeTag, page.SubType, humanize.Bytes(uint64(page.Size)))
		}
	}

	for _, entry := range c.Assets {
		starpak := "-"
		if entry.StarpakOffset != schema.NoStarpakOffset {
			starpak = fmt.Sprintf("0x%x", entry.StarpakOffset)
		}

		fmt.Printf("  %s v%d 0x%016x header %d:%d data %d:%d pages<%d uses %d used by %d starpak %s\n",
			color.YellowString("%s", entry.Type), entry.Version, entry.GUID,
			entry.HeaderPage, entry.HeaderOffset, entry.DataPage, entry.DataOffset,
			entry.PageEnd, entry.UsesCount, entry.RelationsCount, starpak)
	}

	return nil
}
