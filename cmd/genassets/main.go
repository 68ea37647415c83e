package main

import (
	"flag"
	"fmt"
	"os"

	"chosenoffset.com/mspj/internal/placeholders"
)

func main() {
	dir := flag.String("out", ".", "directory to write the example assets into")
	flag.Parse()

	fmt.Println("mspj example asset generator")
	fmt.Println("===========================")

	if err := placeholders.GenerateExample(*dir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, p := range []string{placeholders.AtlasPath, placeholders.AtlasPath + ".json", placeholders.SheetPath, placeholders.LevelPath} {
		fmt.Printf("  wrote %s\n", p)
	}
	fmt.Println("Done! Run cmd/helloworld from the same directory.")
}
