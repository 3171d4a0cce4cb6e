//go:build ignore

package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// rtmidi output links against alsa, every target needs a C cross-compiler when cgo is enabled
var availableTargets = []target{
	{goos: "linux", goarch: "arm", goarm: "6", cc: "arm-linux-gnueabihf-gcc"},
	{goos: "linux", goarch: "arm", goarm: "7", cc: "arm-linux-gnueabihf-gcc"},
	{goos: "linux", goarch: "arm64", cc: "aarch64-linux-gnu-gcc"}, // ARMv8
	{goos: "linux", goarch: "386", cc: "i686-linux-gnu-gcc"},
	{goos: "linux", goarch: "amd64", cc: "gcc"},
}

type target struct {
	goos   string
	goarch string
	goarm  string
	cc     string
}

func (t *target) String() string {
	if t.goarm != "" {
		return fmt.Sprintf("%s-%s-v%s", t.goos, t.goarch, t.goarm)
	}
	return fmt.Sprintf("%s-%s", t.goos, t.goarch)
}

type buildError struct {
	target         target
	stdout, stderr string
}

func build(target target, buildErrors chan<- buildError) error {
	var binaryPath = fmt.Sprintf("./builds/%s-%s", basename, target.String())

	var envVars = []string{
		fmt.Sprintf("GOOS=%s", target.goos),
		fmt.Sprintf("GOARCH=%s", target.goarch),
	}
	if target.goarm != "" {
		envVars = append(envVars, fmt.Sprintf("GOARM=%s", target.goarm))
	}
	if cgo {
		envVars = append(envVars, "CGO_ENABLED=1", fmt.Sprintf("CC=%s", target.cc))
	} else {
		envVars = append(envVars, "CGO_ENABLED=0")
	}

	params := []string{"build", "-o", binaryPath}
	if version != "" {
		params = append(params, "-ldflags", fmt.Sprintf("-X main.version=%s", version))
	}
	if race {
		params = append(params, "-race")
	}
	params = append(params, project)

	cmd := exec.Command("go", params...)
	cmd.Env = append(os.Environ(), envVars...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		buildErrors <- buildError{
			target: target,
			stdout: stdout.String(),
			stderr: stderr.String(),
		}
	}
	return err
}

var selection, project, basename, version string
var cgo, race bool

func init() {
	var targets []string
	for _, target := range availableTargets {
		targets = append(targets, target.String())
	}
	flag.StringVar(&selection, "platforms", "all", fmt.Sprintf(
		"comma-separated target platform list\navailable: %s", strings.Join(targets, ",")),
	)
	flag.StringVar(&project, "project", "./cmd/stradella/", "choose project directory")
	flag.StringVar(&basename, "base", "stradella", "base filename for output binaries")
	flag.StringVar(&version, "version", "", "version string embedded into binaries")
	flag.BoolVar(&cgo, "cgo", true, "cgo, required by rtmidi output")
	flag.BoolVar(&race, "race", false, "include race detector")
	flag.Parse()
}

func main() {
	log.SetFlags(log.Ltime)

	var selectedTargets []target

	if selection != "all" {
		for _, rt := range strings.Split(selection, ",") {
			var found = false
			for _, t := range availableTargets {
				if t.String() == rt {
					selectedTargets = append(selectedTargets, t)
					found = true
					break
				}
			}
			if !found {
				log.Printf("target not found: %s", rt)
				os.Exit(1)
			}
		}
	} else {
		selectedTargets = append(selectedTargets, availableTargets...)
	}

	var names []string
	for _, t := range selectedTargets {
		names = append(names, t.String())
	}
	log.Printf("selected targets: %s", strings.Join(names, ", "))

	var buildErrors = make(chan buildError, len(selectedTargets))
	var failed bool
	var mu sync.Mutex

	wg := sync.WaitGroup{}
	log.Printf("engaging parallel building for %d targets\n", len(selectedTargets))
	for _, t := range selectedTargets {
		wg.Add(1)
		go func(target target) {
			defer wg.Done()
			log.Printf("building target %s          %s", project, target.String())
			if err := build(target, buildErrors); err != nil {
				mu.Lock()
				failed = true
				mu.Unlock()
				log.Printf("building target %s failed:  %s (%s)", project, target.String(), err)
				return
			}
			log.Printf("building target %s success: %s", project, target.String())
		}(t)
	}
	wg.Wait()
	close(buildErrors)

	for err := range buildErrors {
		fmt.Printf("\n>>> Failed build: project: %s, base: %s, target: %s\n", project, basename, err.target.String())
		if err.stdout != "" {
			fmt.Printf("======== STDOUT ========\n%s========================\n", err.stdout)
		}
		if err.stderr != "" {
			fmt.Printf("======== STDERR ========\n%s========================\n", err.stderr)
		}
	}

	if failed {
		os.Exit(1)
	}
}
