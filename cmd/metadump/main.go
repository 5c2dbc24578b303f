// Command metadump prints the segment table of a JPEG file and, with -tags,
// the metadata tags decoded from it.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/twest820/imgmeta"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <file>...\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Print JPEG segments and metadata tags\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	showTags := flag.Bool("tags", false, "Decode and print metadata tags")
	allSegments := flag.Bool("all", false, "Include segments that cannot contain metadata")
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	exitCode := 0
	for _, filename := range flag.Args() {
		if err := dumpFile(filename, *showTags, *allSegments); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", filename, err)
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}

func dumpFile(filename string, showTags, allSegments bool) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	if showTags {
		return dumpTags(filename, f)
	}

	var filter imgmeta.SegmentFilter
	if !allSegments {
		filter = imgmeta.SegmentType.CanContainMetadata
	}

	segments, err := imgmeta.ReadSegments(f, filter)
	if err != nil {
		return err
	}

	fmt.Println(filename)
	for _, seg := range segments {
		if seg.Payload == nil {
			fmt.Printf("  %s\n", seg.Type)
			continue
		}
		fmt.Printf("  %s, %d bytes at %d\n", seg.Type, len(seg.Payload), seg.Offset)
	}
	return nil
}

func dumpTags(filename string, f *os.File) error {
	format := imgmeta.JPEG
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".tif", ".tiff":
		format = imgmeta.TIFF
	}

	var tags imgmeta.Tags
	_, err := imgmeta.Decode(imgmeta.Options{
		R:           f,
		ImageFormat: format,
		HandleTag: func(ti imgmeta.TagInfo) error {
			tags.Add(ti)
			return nil
		},
		Warnf: func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		},
	})
	if err != nil {
		return err
	}

	all := tags.All()
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println(filename)
	for _, name := range names {
		ti := all[name]
		fmt.Printf("  %-8s %-30s %v\n", ti.Source, name, ti.Value)
	}
	return nil
}
