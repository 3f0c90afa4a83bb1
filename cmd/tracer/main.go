// Command tracer renders the flux a heliostat delivers onto a tower
// receiver.
//
// The scene is a single square mirror near the origin, aimed so that
// sunlight at the requested time and place bounces onto a round
// receiver plate on a tower to the north, with an absorbing ground
// plane below. Sunlight is sampled over a disk source with a pillbox
// sunshape at the site's direct normal irradiance, traced through the
// scene, and accumulated into a flux map over the receiver.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/alexlib/tracer/pkg/cache"
	"github.com/alexlib/tracer/pkg/engine"
	"github.com/alexlib/tracer/pkg/fluxmap"
	"github.com/alexlib/tracer/pkg/geometry"
	"github.com/alexlib/tracer/pkg/loaders"
	"github.com/alexlib/tracer/pkg/optics"
	"github.com/alexlib/tracer/pkg/scene"
	"github.com/alexlib/tracer/pkg/source"
	"github.com/alexlib/tracer/pkg/spatial"
)

// Scene layout, in meters.
const (
	mirrorWidth    = 2.0
	mirrorHeight   = 2.0
	receiverRadius = 1.0

	// The source disk sits upstream of the mirror along the sun ray,
	// wide enough to cover the mirror at any aim.
	sourceDistance = 10.0
	sourceRadius   = 2.0

	// Absorptivity of silvered glass.
	mirrorAbsorptivity = 0.04

	maxBounces     = 10
	meshResolution = 4.0
)

var (
	mirrorCenter   = r3.Vec{Z: 2}
	receiverCenter = r3.Vec{Y: 20, Z: 8}
)

// traceRecord is what a full trace boils down to for plotting: where
// rays landed on the receiver and how much energy they delivered.
type traceRecord struct {
	Points      []r3.Vec
	Energy      []float64
	Generations int
}

func main() {
	lat := flag.Float64("lat", 30.86, "site latitude in degrees north")
	lon := flag.Float64("lon", 34.78, "site longitude in degrees east")
	elev := flag.Float64("elev", 475, "site elevation in meters")
	when := flag.String("time", "2023-06-21T12:00:00+03:00", "trace time (RFC 3339)")
	rays := flag.Int("rays", 200000, "number of rays to trace")
	seed := flag.Int64("seed", 1, "sunshape sampler seed")
	bins := flag.Int("bins", 50, "flux map bins per axis")
	out := flag.String("o", "flux.png", "flux map output file")
	stlOut := flag.String("stl", "", "also write the scene mesh to this STL file")
	cacheDir := flag.String("cache", ".cache", "trace cache directory (empty disables caching)")
	flag.Parse()

	t, err := time.Parse(time.RFC3339, *when)
	if err != nil {
		log.Fatalf("bad -time: %s", err)
	}
	if *rays <= 0 {
		log.Fatal("-rays must be positive")
	}

	pos := source.SunPosition(t, *lat, *lon)
	if pos.Altitude <= 0 {
		log.Fatalf("no direct sun at %s (altitude %.1f deg)", t, pos.Altitude)
	}
	dni := source.DirectNormalIrradiance(pos.Altitude, *elev)
	fmt.Printf("Sun at %.1f deg altitude, %.1f deg azimuth; DNI %.0f W/m^2\n",
		pos.Altitude, pos.Azimuth, dni)

	asm, rec, recSurf := buildScene(pos)

	if *cacheDir != "" {
		cache.Dir = *cacheDir
	}
	key := cache.MakeKey(t.UTC(), *lat, *lon, *elev, *rays, *seed,
		mirrorCenter, receiverCenter, mirrorWidth, mirrorHeight, receiverRadius)

	var res traceRecord
	if *cacheDir == "" || !key.Load(&res) {
		res = runTrace(asm, rec, pos, dni, *rays, *seed)
		if *cacheDir != "" {
			key.Save(res)
		}
	} else {
		fmt.Println("Reusing cached trace")
	}

	fm, err := fluxmap.New(2*receiverRadius, 2*receiverRadius, *bins, *bins)
	if err != nil {
		log.Fatal(err)
	}
	fm.Record(recSurf.GlobalFrame(), res.Points, res.Energy)

	total := dni * math.Pi * sourceRadius * sourceRadius
	fmt.Printf("Receiver intercepted %.0f of %.0f W over %d hits in %d generations; peak flux %.0f W/m^2\n",
		fm.Power(), total, len(res.Points), res.Generations, fm.Peak())

	title := fmt.Sprintf("Receiver flux, %s", t.Format("2006-01-02 15:04"))
	if err := fm.SavePNG(title, *out); err != nil {
		log.Panic(err)
	}
	fmt.Printf("Flux map saved as %s\n", *out)

	if *stlOut != "" {
		writeSceneSTL(asm, *stlOut)
	}
}

func buildScene(pos source.SunPos) (*scene.Assembly, *optics.Receiver, *scene.Surface) {
	mirrorGeom, err := geometry.NewRectPlate(mirrorWidth, mirrorHeight)
	if err != nil {
		log.Fatal(err)
	}
	coating, err := optics.NewReflective(mirrorAbsorptivity)
	if err != nil {
		log.Fatal(err)
	}
	// Aim the mirror: its normal bisects the directions toward the
	// sun and toward the receiver.
	aim := r3.Unit(r3.Add(pos.TowardSun(), r3.Unit(r3.Sub(receiverCenter, mirrorCenter))))
	mirror, err := scene.NewSurface(mirrorGeom, coating,
		spatial.Compose(spatial.Translation(mirrorCenter), spatial.RotationTo(aim)))
	if err != nil {
		log.Fatal(err)
	}

	recGeom, err := geometry.NewRoundPlate(receiverRadius)
	if err != nil {
		log.Fatal(err)
	}
	rec := optics.NewReceiver(nil)
	facing := r3.Unit(r3.Sub(mirrorCenter, receiverCenter))
	recSurf, err := scene.NewSurface(recGeom, rec,
		spatial.Compose(spatial.Translation(receiverCenter), spatial.RotationTo(facing)))
	if err != nil {
		log.Fatal(err)
	}

	ground, err := scene.NewSurface(geometry.NewFlat(), optics.Absorber{}, nil)
	if err != nil {
		log.Fatal(err)
	}

	asm := scene.NewAssembly(nil)
	asm.AddSurface(mirror)
	asm.AddSurface(recSurf)
	asm.AddSurface(ground)
	return asm, rec, recSurf
}

func runTrace(asm *scene.Assembly, rec *optics.Receiver, pos source.SunPos, dni float64, rays int, seed int64) traceRecord {
	rng := rand.New(rand.NewSource(seed))
	dir := pos.Direction()
	center := r3.Add(mirrorCenter, r3.Scale(-sourceDistance, dir))
	bundle := source.SolarDiskBundle(rng, rays, center, dir, sourceRadius, source.SunAngularRadius, dni)

	perRay := dni * math.Pi * sourceRadius * sourceRadius / float64(rays)
	start := time.Now()
	eng := engine.New(asm)
	eng.Trace(bundle, maxBounces, perRay*1e-3)
	fmt.Printf("Traced %d rays in %v\n", rays, time.Since(start).Round(time.Millisecond))

	points, energy := rec.AllHits()
	return traceRecord{Points: points, Energy: energy, Generations: len(eng.Bundles()) - 1}
}

func writeSceneSTL(asm *scene.Assembly, path string) {
	f, err := os.Create(path)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	if err := loaders.AssemblyMesh(asm, meshResolution).WriteSTL(f); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Scene mesh saved as %s\n", path)
}
