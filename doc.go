/*
Package pinlogo converts raster brand logos into small vector icons suited for map pin markers.

Each logo is trimmed of its uniform padding, its background is classified (transparent,
corner or center dominated), the foreground is extracted into a binary mask, the mask is
trimmed again, placed inside the pin head safe zone of a 24×24 canvas, traced into SVG path
data and finally minified. A pin body color legible against the extracted fill is computed
for theming.

The package provides a command line interface, supporting various flags for batch conversions.
To check the supported commands type:

	$ pinlogo --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"context"
		"fmt"
		"os"

		"github.com/pinlogo/pinlogo"
	)

	func main() {
		p := pinlogo.NewProcessor(pinlogo.DefaultConfig(), nil)

		res, err := p.Process(context.Background(), os.Stdin, os.Stdout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error converting the logo: %s", err.Error())
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "fill %s, pin %s\n", res.Fill, res.Contrast)
	}
*/
package pinlogo
