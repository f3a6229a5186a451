// Command pimjpeg decodes baseline JPEG files and writes each one out as a
// BMP, optionally flipped or half-scaled, fanning both the per-image
// entropy decode and the batch itself out across goroutines.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cocosip/pimjpeg/bmp"
	"github.com/cocosip/pimjpeg/jpeg/baseline"
)

func main() {
	parallel := flag.Bool("d", false, "use the parallel lane backend (otherwise -n is forced to 1)")
	lanes := flag.Int("n", 0, "lane count for the parallel backend (0 = GOMAXPROCS)")
	groups := flag.Int("k", 4, "worker group count: how many files are decoded concurrently")
	scalePercent := flag.Int("s", 100, "scale percent; only 50 is supported and maps to the half-scale pass")
	maxFiles := flag.Int("m", 0, "maximum number of files to process (0 = no limit)")
	scaleWidth := flag.Int("w", 0, "informational target width, logged but not otherwise acted on")
	flip := flag.Bool("f", false, "apply a horizontal flip")
	multiPerGroup := flag.Bool("M", false, "batch files round-robin onto the K worker groups instead of one goroutine per file")
	flag.Parse()

	if !*parallel {
		*lanes = 1
	}
	if *scaleWidth > 0 {
		fmt.Fprintf(os.Stderr, "pimjpeg: -w %d is informational only\n", *scaleWidth)
	}
	if *scalePercent != 50 && *scalePercent != 100 {
		fmt.Fprintf(os.Stderr, "pimjpeg: -s %d unsupported, only 50 and 100 are honored\n", *scalePercent)
	}

	files, err := collectFiles(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "pimjpeg: %v\n", err)
		os.Exit(1)
	}
	if *maxFiles > 0 && len(files) > *maxFiles {
		files = files[:*maxFiles]
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "pimjpeg: no input files")
		os.Exit(1)
	}

	opts := baseline.Options{
		NumLanes:  *lanes,
		Flip:      *flip,
		HalfScale: *scalePercent == 50,
	}

	var successCount, failCount int64

	if *multiPerGroup {
		runWithPersistentGroups(files, *groups, opts, &successCount, &failCount)
	} else {
		runOneGoroutinePerFile(files, *groups, opts, &successCount, &failCount)
	}

	fmt.Printf("pimjpeg: %d succeeded, %d failed\n", successCount, failCount)
	if successCount == 0 {
		os.Exit(1)
	}
}

// runWithPersistentGroups starts exactly k long-lived workers draining a
// shared job channel, so files are batched round-robin onto k groups.
func runWithPersistentGroups(files []string, k int, opts baseline.Options, ok, fail *int64) {
	jobs := make(chan string, len(files))
	for _, f := range files {
		jobs <- f
	}
	close(jobs)

	var wg sync.WaitGroup
	for i := 0; i < k; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range jobs {
				processFile(f, opts, ok, fail)
			}
		}()
	}
	wg.Wait()
}

// runOneGoroutinePerFile launches one goroutine per file, capped to k
// concurrent decodes by a semaphore.
func runOneGoroutinePerFile(files []string, k int, opts baseline.Options, ok, fail *int64) {
	sem := make(chan struct{}, k)
	var wg sync.WaitGroup
	for _, f := range files {
		f := f
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			processFile(f, opts, ok, fail)
		}()
	}
	wg.Wait()
}

func processFile(path string, opts baseline.Options, ok, fail *int64) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pimjpeg: %s: %v\n", path, err)
		atomic.AddInt64(fail, 1)
		return
	}

	img, err := baseline.Decode(data, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pimjpeg: %s: %v\n", path, err)
		atomic.AddInt64(fail, 1)
		return
	}

	outPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".bmp"
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pimjpeg: %s: %v\n", outPath, err)
		atomic.AddInt64(fail, 1)
		return
	}
	defer out.Close()

	if err := bmp.Write(out, img); err != nil {
		fmt.Fprintf(os.Stderr, "pimjpeg: %s: %v\n", outPath, err)
		atomic.AddInt64(fail, 1)
		return
	}

	atomic.AddInt64(ok, 1)
}

// collectFiles expands the "-" positional argument into a newline-delimited
// filename list read from standard input; any other args are filenames.
func collectFiles(args []string) ([]string, error) {
	var files []string
	for _, a := range args {
		if a != "-" {
			files = append(files, a)
			continue
		}
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" {
				files = append(files, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading filenames from stdin: %w", err)
		}
	}
	return files, nil
}
