package main

import (
	"os"

	"github.com/omniscale/clipwater"
	"github.com/omniscale/clipwater/config"
	"github.com/omniscale/clipwater/geom/geos"
	"github.com/omniscale/clipwater/log"
	"github.com/omniscale/clipwater/pipeline"
)

func main() {
	log.Printf("[debug] clipwater %s, GEOS %s", clipwater.Version, geos.Version())

	if err := pipeline.Run(config.DefaultJob(), os.Stdout); err != nil {
		log.Fatalf("[fatal] %+v", err)
	}
}
