package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/connstore"
)

// printStorage writes the storage as an indented tree. Header fields are
// shown only for index versions that store them.
func printStorage(w io.Writer, st *connstore.Storage, digests map[string]digest.Digest) error {
	meta := st.MetaData()
	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)
	prop := func(indent, name string, value any) {
		fmt.Fprintf(tw, "%s%s:\t%v\n", indent, name, value)
	}

	fmt.Fprintf(tw, "%s\n", st.Dir())
	prop("  ", "Version", meta.Version)
	prop("  ", "Entry Count", meta.EntryCount)
	if meta.Version >= 7 {
		prop("  ", "Name", meta.Name)
		prop("  ", "AUMID", meta.AppID)
	}
	if meta.Version > 8 {
		prop("  ", "Last Modified", meta.LastModified)
		prop("  ", "Flags", meta.Flags)
	}
	if meta.Version >= 13 {
		prop("  ", "Root ID", meta.RootContainerID)
	}
	if meta.Version >= 14 {
		prop("  ", "Reserved", hex.EncodeToString(meta.Reserved))
	}

	fmt.Fprintf(tw, "  Containers:\n")
	for _, ct := range st.Containers() {
		en := ct.Entry()
		fmt.Fprintf(tw, "    %s\n", en.ContainerID)
		prop("      ", "File name", en.FileName)
		if meta.Version >= 12 {
			prop("      ", "Entry name", en.EntryName)
		}
		prop("      ", "Last Modified", en.LastModified)
		prop("      ", "File size", en.FileSize)
		prop("      ", "ETag", en.ETag)
		prop("      ", "State", en.State)
		prop("      ", "Type", en.Type)

		fmt.Fprintf(tw, "      Blobs:\n")
		for _, rec := range ct.Blobs() {
			fmt.Fprintf(tw, "        %s\n", rec.FileID)
			prop("          ", "Name", rec.Name)
			prop("          ", "Atom ID", rec.AtomID)
			if d, ok := digests[ct.BlobPath(rec)]; ok {
				prop("          ", "Digest", d)
			}
		}
	}
	return tw.Flush()
}
