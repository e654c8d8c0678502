// Command facealign estimates similarity transforms from facial landmarks
// and warps face images onto a reference template.
package main

import (
	"os"

	"github.com/rs/zerolog/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("facealign failed")
		os.Exit(1)
	}
}
