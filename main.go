package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/minic-lang/minic/compiler"
	"github.com/minic-lang/minic/lexer"
	"github.com/minic-lang/minic/parser"
	"github.com/minic-lang/minic/token"
)

var MN_SUFFIX = ".mn"
var ASM_SUFFIX = ".s"

var RUNTIME_DIR = "runtime"

var CC = "cc" // Can be configured via MINIC_CC

// defaultCacheDir gets env variable MINICCACHE
// if it is not set sets it to default value for windows, mac, linux
func defaultCacheDir() string {
	if env := os.Getenv("MINICCACHE"); env != "" {
		return env
	}

	homeDir, _ := os.UserHomeDir()
	var cache string
	switch runtime.GOOS {
	case "windows":
		if localAppData := os.Getenv("LocalAppData"); localAppData != "" {
			cache = filepath.Join(localAppData, "minic")
			return cache
		}
		cache = filepath.Join(homeDir, "AppData", "Local", "minic")

	case "darwin":
		cache = filepath.Join(homeDir, "Library", "Caches", "minic")

	default: // Linux and others
		if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
			cache = filepath.Join(xdg, "minic")
			return cache
		}
		cache = filepath.Join(homeDir, ".cache", "minic")
	}

	return cache
}

// compileSource runs the pipeline on source text and returns the assembly,
// or the error that aborted compilation. No output is produced on failure.
func compileSource(src string) (string, *token.CompileError) {
	l := lexer.New(src)
	p := parser.New(l)
	program := p.Parse()
	if errs := p.Errors(); len(errs) > 0 {
		return "", errs[0]
	}

	c := compiler.NewCompiler()
	if errs := c.Compile(program); len(errs) > 0 {
		return "", errs[0]
	}
	return c.Assembly(), nil
}

// compileFile compiles srcFile and writes the assembly next to it (or to
// outPath when given). Returns the written path.
func compileFile(srcFile, outPath string) (string, error) {
	source, err := os.ReadFile(srcFile)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", srcFile, err)
	}

	asm, cerr := compileSource(string(source))
	if cerr != nil {
		return "", fmt.Errorf("%s:%s", srcFile, cerr)
	}

	if outPath == "" {
		outPath = strings.TrimSuffix(srcFile, MN_SUFFIX) + ASM_SUFFIX
	}
	if err := os.WriteFile(outPath, []byte(asm), 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", outPath, err)
	}
	return outPath, nil
}

// buildBinary assembles and links the emitted assembly with the runtime
// entry stub via the system C toolchain.
func buildBinary(asmPath, binPath string) error {
	rtObjs, err := prepareRuntime(defaultCacheDir())
	if err != nil {
		return fmt.Errorf("preparing runtime: %w", err)
	}

	args := []string{asmPath}
	args = append(args, rtObjs...)
	args = append(args, "-o", binPath)
	if out, err := exec.Command(CC, args...).CombinedOutput(); err != nil {
		return fmt.Errorf("linking failed: %v\n%s", err, out)
	}
	return nil
}

func build(srcFile, outPath string, asmOnly bool) error {
	asmPath, err := compileFile(srcFile, outPath)
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", asmPath)
	if asmOnly {
		return nil
	}

	binPath := strings.TrimSuffix(srcFile, MN_SUFFIX)
	if err := buildBinary(asmPath, binPath); err != nil {
		return err
	}
	fmt.Printf("built %s\n", binPath)
	return nil
}

// watch rebuilds srcFile whenever it changes on disk. Editors often
// replace files by rename, so the watch is on the directory.
func watch(srcFile, outPath string, asmOnly bool) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(srcFile)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	fmt.Printf("watching %s\n", srcFile)
	target := filepath.Clean(srcFile)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := build(srcFile, outPath, asmOnly); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		}
	}
}

func main() {
	asmOnly := flag.Bool("S", false, "stop after emitting assembly")
	outPath := flag.String("o", "", "assembly output path (default: source with .s suffix)")
	watchMode := flag.Bool("watch", false, "recompile when the source file changes")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		printVersion()
		return
	}

	if cc := os.Getenv("MINIC_CC"); cc != "" {
		CC = cc
	}

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: minic [flags] file%s\n", MN_SUFFIX)
		flag.PrintDefaults()
		os.Exit(2)
	}
	srcFile := flag.Arg(0)

	if err := build(srcFile, *outPath, *asmOnly); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if !*watchMode {
			os.Exit(1)
		}
	}

	if *watchMode {
		if err := watch(srcFile, *outPath, *asmOnly); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}
