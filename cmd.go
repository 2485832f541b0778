package main

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	rootCmd *cobra.Command
)

var (
	verify  *bool
	workers *int
)

func init() {
	rootCmd = NewRootCmd()
}

func Execute() error {
	return run(rootCmd)
}

// run 执行命令, 错误统一在这里输出
func run(cmd *cobra.Command) error {
	err := cmd.Execute()
	if err != nil {
		cmd.PrintErrln(newPainter(cmd.ErrOrStderr()).failure("Error: " + err.Error()))
	}
	return err
}

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "jpatch <path-to-binary-file>...",
		Aliases:                    nil,
		SuggestFor:                 nil,
		Short:                      "patch 0x159E=0xEB, 0x159F=0x00 in place",
		Long:                       "",
		Example:                    "jpatch ./app.bin",
		ValidArgs:                  nil,
		ValidArgsFunction:          nil,
		Args:                       rootCmdArgs,
		ArgAliases:                 nil,
		BashCompletionFunction:     "",
		Deprecated:                 "",
		Annotations:                nil,
		Version:                    "",
		PersistentPreRun:           nil,
		PersistentPreRunE:          nil,
		PreRun:                     nil,
		PreRunE:                    nil,
		Run:                        nil,
		RunE:                       rootCmdRun,
		PostRun:                    nil,
		PostRunE:                   nil,
		PersistentPostRun:          nil,
		PersistentPostRunE:         nil,
		FParseErrWhitelist:         cobra.FParseErrWhitelist{},
		CompletionOptions:          cobra.CompletionOptions{},
		TraverseChildren:           false,
		Hidden:                     false,
		SilenceErrors:              true,
		SilenceUsage:               true,
		DisableFlagParsing:         false,
		DisableAutoGenTag:          false,
		DisableFlagsInUseLine:      false,
		DisableSuggestions:         false,
		SuggestionsMinimumDistance: 0,
	}

	// flags
	setFlags(cmd.Flags())
	return cmd
}

func setFlags(flags *pflag.FlagSet) {
	verify = flags.BoolP("verify", "V", false, "read the patched bytes back and compare")
	workers = flags.IntP("workers", "w", runtime.NumCPU(), "specifies how many files are patched at the same time")
}

func rootCmdArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return ErrMissingArgument
	}
	return nil
}

func rootCmdRun(cmd *cobra.Command, args []string) error {
	targets := getTargets(args)

	size := *workers
	if size < 1 {
		size = 1
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		return err
	}
	defer pool.Release()

	check := *verify
	results := make([]error, len(targets))
	wg := sync.WaitGroup{}
	wg.Add(len(targets))

	for i := range targets {
		idx := i
		err := pool.Submit(func() {
			results[idx] = NewPatcher(targets[idx], DefaultEntries, check).Patch()
			wg.Done()
		})
		if err != nil {
			results[idx] = err
			wg.Done()
		}
	}

	wg.Wait()
	return report(cmd, targets, results)
}

// report 按参数顺序输出结果
func report(cmd *cobra.Command, targets []string, results []error) error {
	out := newPainter(cmd.OutOrStdout())
	errOut := newPainter(cmd.ErrOrStderr())
	msg := Message(DefaultEntries)

	failed := 0
	for i, target := range targets {
		if results[i] != nil {
			failed++
			cmd.PrintErrln(errOut.failure(fmt.Sprintf("%s: %s", target, results[i])))
			continue
		}
		line := msg
		if len(targets) > 1 {
			line = fmt.Sprintf("%s: %s", target, msg)
		}
		fmt.Fprintln(cmd.OutOrStdout(), out.success(line))
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d files", ErrPatchFailed, failed, len(targets))
	}
	return nil
}

// getTargets 按真实路径去重, 保留首次出现的顺序
func getTargets(args []string) []string {
	seen := make(map[string]struct{}, len(args))
	targets := make([]string, 0, len(args))
	for _, v := range args {
		key := v
		if resolved, err := filepath.EvalSymlinks(v); err == nil {
			key = resolved
		}
		if abs, err := filepath.Abs(key); err == nil {
			key = abs
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		targets = append(targets, v)
	}
	return targets
}
