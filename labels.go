package carcount

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// VehicleClasses returns the COCO class ids conventionally treated as road
// vehicles: car, motorcycle, bus and truck.  Detectors trained on custom
// datasets should pass their own class set in Params.EligibleClasses
func VehicleClasses() []int {
	return []int{2, 3, 5, 7}
}

// LoadClassNames reads display names for detector classes from the given
// text file.  It should contain one label per line, in class id order
func LoadClassNames(file string) ([]string, error) {

	// open the file
	f, err := os.Open(file)

	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	defer f.Close()

	// create a scanner to read the file.
	scanner := bufio.NewScanner(f)

	var names []string

	// read and trim each line
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		names = append(names, line)
	}

	// check for errors during scanning
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return names, nil
}
