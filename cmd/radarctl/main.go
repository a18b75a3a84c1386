// Command radarctl is a companion CLI for the proximity engine: it measures
// distances, projects coordinates onto a viewport and walks a simulated observer
// that publishes its fixes to NATS as if it were a live device.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
