package export

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"clipdeck/internal/timeline"
)

// Pipeline turns a merged clip sequence into one downloadable file. Clips
// are fetched into the engine's storage, re-encoded to the shared profile,
// then stream-copied together via the concat demuxer. Heterogeneous source
// encodings are why the normalize pass exists: naive stream-copy splices of
// mismatched codec parameters stall at the joins.
type Pipeline struct {
	Engine    Engine
	Profile   Profile
	OutputDir string
	Logger    *log.Logger
}

// Options controls one export run.
type Options struct {
	// Concurrency bounds parallel normalization. Values below 1 mean serial.
	Concurrency int
	// Progress observes monotonic progress from 0 to 100.
	Progress func(phase Phase, percent float64)
	// ClipStatus observes per-clip transitions ("fetched", "normalizing",
	// "normalized") keyed by sequence position.
	ClipStatus func(index int, status string)
}

func (o Options) clipStatus(index int, status string) {
	if o.ClipStatus != nil {
		o.ClipStatus(index, status)
	}
}

// Artifact is the delivered export.
type Artifact struct {
	Path     string
	Filename string
	Bytes    int64
	Method   string // "copy" for the single-clip path, otherwise "normalize+concat"
}

// Run executes the export for seq. Intermediate engine entries carry a
// per-run namespace so a second invocation can never collide with this one's
// storage, and are removed best-effort on both success and failure.
func (p *Pipeline) Run(ctx context.Context, seq timeline.Sequence, opts Options) (Artifact, error) {
	if len(seq) == 0 {
		return Artifact{}, fmt.Errorf("export: empty sequence")
	}
	if err := os.MkdirAll(p.OutputDir, 0o755); err != nil {
		return Artifact{}, fmt.Errorf("prepare output dir: %w", err)
	}

	tracker := NewTracker(opts.Progress)
	run := uuid.NewString()[:8]
	// The run token in the name keeps back-to-back exports within the same
	// second from overwriting each other.
	filename := "export-" + time.Now().Format("20060102-150405") + "-" + run + ".mp4"
	outputPath := filepath.Join(p.OutputDir, filename)

	if len(seq) == 1 {
		// A single clip needs no re-encode: deliver the original bytes
		// untouched.
		artifact, err := p.deliverCopy(seq[0], outputPath, tracker)
		if err != nil {
			return Artifact{}, err
		}
		return artifact, nil
	}

	var (
		inputNames = make([]string, len(seq))
		normNames  = make([]string, len(seq))
	)
	for i, clip := range seq {
		inputNames[i] = fmt.Sprintf("in-%s-%03d%s", run, i+1, sourceExt(clip.Source))
		normNames[i] = fmt.Sprintf("norm-%s-%03d.mp4", run, i+1)
	}
	manifestName := fmt.Sprintf("concat-%s.txt", run)
	mergedName := fmt.Sprintf("out-%s.mp4", run)

	defer func() {
		// Cleanup runs on every exit path and never masks the primary
		// result.
		for _, name := range inputNames {
			_ = p.Engine.Remove(name)
		}
		for _, name := range normNames {
			_ = p.Engine.Remove(name)
		}
		_ = p.Engine.Remove(manifestName)
		_ = p.Engine.Remove(mergedName)
	}()

	if err := p.fetch(seq, inputNames, tracker, opts); err != nil {
		return Artifact{}, err
	}
	if err := p.normalize(ctx, seq, inputNames, normNames, tracker, opts); err != nil {
		return Artifact{}, err
	}
	if err := p.concat(ctx, seq, normNames, manifestName, mergedName, tracker); err != nil {
		return Artifact{}, err
	}

	artifact, err := p.deliver(mergedName, outputPath, tracker)
	if err != nil {
		return Artifact{}, err
	}
	return artifact, nil
}

// fetch copies every clip's bytes into engine storage, in sequence order.
func (p *Pipeline) fetch(seq timeline.Sequence, inputNames []string, tracker *Tracker, opts Options) error {
	for i, clip := range seq {
		src, err := os.Open(clip.Source)
		if err != nil {
			return fmt.Errorf("fetch clip %d: %w", i+1, err)
		}
		n, err := p.Engine.WriteInput(inputNames[i], src)
		src.Close()
		if err != nil {
			return fmt.Errorf("fetch clip %d: %w", i+1, err)
		}
		p.logf("fetched clip %d (%d bytes)", i+1, n)
		opts.clipStatus(i, "fetched")
		tracker.Set(PhaseFetch, fetchEnd*float64(i+1)/float64(len(seq)))
	}
	return nil
}

// normalize re-encodes every clip to the shared profile. Clips may finish in
// any order under concurrency; per-clip fractions keep the reported progress
// meaningful either way.
func (p *Pipeline) normalize(ctx context.Context, seq timeline.Sequence, inputNames, normNames []string, tracker *Tracker, opts Options) error {
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	var (
		mu    sync.Mutex
		fracs = make([]float64, len(seq))
	)
	report := func(i int, ratio float64) {
		mu.Lock()
		if ratio > fracs[i] {
			fracs[i] = ratio
		}
		var sum float64
		for _, f := range fracs {
			sum += f
		}
		mu.Unlock()
		tracker.Set(PhaseNormalize, fetchEnd+(normalizeEnd-fetchEnd)*sum/float64(len(seq)))
	}

	var (
		wg   sync.WaitGroup
		sem  = make(chan struct{}, concurrency)
		errs = make([]error, len(seq))
	)
	for i, clip := range seq {
		i, clip := i, clip
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			opts.clipStatus(i, "normalizing")
			spec := ExecSpec{
				Args:         p.Profile.NormalizeArgs(inputNames[i], normNames[i]),
				InputSeconds: clip.DurationSeconds,
				OnProgress:   func(ratio float64) { report(i, ratio) },
			}
			if err := p.Engine.Exec(ctx, spec); err != nil {
				errs[i] = fmt.Errorf("normalize clip %d: %w", i+1, err)
				return
			}
			report(i, 1)
			opts.clipStatus(i, "normalized")
			p.logf("normalized clip %d", i+1)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// concat writes the ordered manifest and stream-copies the normalized clips
// into one file. The manifest is built from sequence position, so completion
// order during normalization can never reorder the output.
func (p *Pipeline) concat(ctx context.Context, seq timeline.Sequence, normNames []string, manifestName, mergedName string, tracker *Tracker) error {
	var manifest strings.Builder
	for _, name := range normNames {
		fmt.Fprintf(&manifest, "file '%s'\n", strings.ReplaceAll(name, "'", "'\\''"))
	}
	if _, err := p.Engine.WriteInput(manifestName, strings.NewReader(manifest.String())); err != nil {
		return fmt.Errorf("write concat manifest: %w", err)
	}

	spec := ExecSpec{
		Args:         ConcatArgs(manifestName, mergedName),
		InputSeconds: seq.TotalDuration(),
		OnProgress: func(ratio float64) {
			tracker.Set(PhaseConcat, normalizeEnd+(concatEnd-normalizeEnd)*ratio)
		},
	}
	if err := p.Engine.Exec(ctx, spec); err != nil {
		return fmt.Errorf("concat: %w", err)
	}
	tracker.Set(PhaseConcat, concatEnd)
	p.logf("concatenated %d clips", len(seq))
	return nil
}

// deliver moves the merged result out of engine storage into the exports
// directory.
func (p *Pipeline) deliver(mergedName, outputPath string, tracker *Tracker) (Artifact, error) {
	rc, err := p.Engine.ReadOutput(mergedName)
	if err != nil {
		return Artifact{}, fmt.Errorf("read export output: %w", err)
	}
	defer rc.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return Artifact{}, fmt.Errorf("create export file: %w", err)
	}
	n, err := io.Copy(out, rc)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(outputPath)
		return Artifact{}, fmt.Errorf("deliver export: %w", err)
	}

	tracker.Set(PhaseDone, 100)
	p.logf("delivered %s (%d bytes)", outputPath, n)
	return Artifact{
		Path:     outputPath,
		Filename: filepath.Base(outputPath),
		Bytes:    n,
		Method:   "normalize+concat",
	}, nil
}

// deliverCopy is the single-clip path: byte-for-byte copy, no quality loss.
func (p *Pipeline) deliverCopy(clip timeline.Clip, outputPath string, tracker *Tracker) (Artifact, error) {
	src, err := os.Open(clip.Source)
	if err != nil {
		return Artifact{}, fmt.Errorf("open clip source: %w", err)
	}
	defer src.Close()
	tracker.Set(PhaseFetch, fetchEnd)

	out, err := os.Create(outputPath)
	if err != nil {
		return Artifact{}, fmt.Errorf("create export file: %w", err)
	}
	n, err := io.Copy(out, src)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(outputPath)
		return Artifact{}, fmt.Errorf("copy clip: %w", err)
	}

	tracker.Set(PhaseDone, 100)
	p.logf("delivered single-clip copy %s (%d bytes)", outputPath, n)
	return Artifact{
		Path:     outputPath,
		Filename: filepath.Base(outputPath),
		Bytes:    n,
		Method:   "copy",
	}, nil
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.Logger != nil {
		p.Logger.Printf("export: "+format, args...)
	}
}

func sourceExt(source string) string {
	if ext := filepath.Ext(source); ext != "" {
		return ext
	}
	return ".mp4"
}
