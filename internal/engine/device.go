package engine

import (
	"context"
	"log"
	"os/exec"
	"strings"
	"time"
)

// Device describes the compute device the inference runtime will use,
// reported by /health.
type Device struct {
	Name          string // "cuda:0" or "cpu"
	CUDAAvailable bool
	GPU           string // GPU model name, empty on CPU
}

const detectTimeout = 5 * time.Second

// Detect probes for an NVIDIA GPU via nvidia-smi. An override ("cpu",
// "cuda:0", ...) skips probing and is taken at face value.
func Detect(override string) Device {
	if override != "" {
		return Device{
			Name:          override,
			CUDAAvailable: strings.HasPrefix(override, "cuda"),
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), detectTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "nvidia-smi",
		"--query-gpu=name", "--format=csv,noheader").Output()
	if err != nil {
		log.Println("CUDA not available, using CPU")
		return Device{Name: "cpu"}
	}

	gpu := strings.TrimSpace(strings.SplitN(string(out), "\n", 2)[0])
	if gpu == "" {
		return Device{Name: "cpu"}
	}

	log.Printf("Using CUDA device: %s", gpu)
	return Device{Name: "cuda:0", CUDAAvailable: true, GPU: gpu}
}
