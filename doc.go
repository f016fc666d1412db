/*
Package facepipe normalizes raw face photographs for downstream recognition models.

Given an arbitrary input image the pipeline locates the most prominent face,
rotates the image so the line between the eyes becomes horizontal, re-detects
the face on the leveled image and crops a margin-expanded, aspect-ratio-correct
region around it.

The package provides a command line interface for processing single files,
directories, URLs or pipes. To check the supported commands type:

	$ facepipe --help

In case you wish to integrate the API in a self constructed environment here
is a simple example:

	package main

	import (
		"fmt"

		facepipe "github.com/Jakub-Ner/FaceRecognitionPipeline"
	)

	func main() {
		det, err := facepipe.NewPigoDetector("facefinder", "puploc", facepipe.DefaultDetectorConfig())
		if err != nil {
			fmt.Printf("Error initializing the face detector: %s", err.Error())
			return
		}

		p := &facepipe.Processor{
			Margin:   facepipe.DefaultMargin(),
			Ratio:    facepipe.Ratio{H: 1, W: 1},
			Detector: det,
		}

		msg, err := p.Process(in, out)
		if err != nil {
			fmt.Printf("Error cropping the face: %s", err.Error())
		}
		if msg != "" {
			fmt.Println(msg)
		}
	}
*/
package facepipe
