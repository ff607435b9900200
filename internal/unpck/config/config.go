// Package config はunpckコマンドの設定管理を行います
package config

import (
	"flag"
	"fmt"
	"io"
	"os"
)

const Version = "0.1.0"

// Config はアプリケーションの設定を保持します
type Config struct {
	ArchivePath string
	OutputDir   string // 空の場合はアーカイブ名から決める
	List        bool
	Extract     bool
	KeepGoing   bool
	DebugMode   bool
	ShowVersion bool
	Targets     []string // 抽出するエントリのパス
}

// ExtractRequested は抽出を行うかを返します。エントリの指定がある場合は -x を省略できます。
func (c *Config) ExtractRequested() bool {
	return c.Extract || len(c.Targets) > 0
}

// ParseFlags はコマンドライン引数を解析して設定を返します
func ParseFlags() *Config {
	config := &Config{}

	// カスタムUsage関数を設定（ダブルハイフン表示）
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(out, "  %s [options] <archive.pck> [entry ...]\n", os.Args[0])
		fmt.Fprintln(out, "  --archive string")
		fmt.Fprintln(out, "    \tpath to .pck archive file (e.g. models.pck)")
		fmt.Fprintln(out, "  -a string")
		fmt.Fprintln(out, "    \tpath to .pck archive file (shorthand)")
		fmt.Fprintln(out, "  --list")
		fmt.Fprintln(out, "    \tlist entries")
		fmt.Fprintln(out, "  -l\tlist entries (shorthand)")
		fmt.Fprintln(out, "  --extract")
		fmt.Fprintln(out, "    \textract entries (implied when entry names are given)")
		fmt.Fprintln(out, "  -x\textract entries (shorthand)")
		fmt.Fprintln(out, "  -o string")
		fmt.Fprintln(out, "    \toutput directory (default: archive name without extension)")
		fmt.Fprintln(out, "  --keep-going")
		fmt.Fprintln(out, "    \tcontinue extracting after a failed entry")
		fmt.Fprintln(out, "  -k\tcontinue extracting after a failed entry (shorthand)")
		fmt.Fprintln(out, "  --debug")
		fmt.Fprintln(out, "    \tenable debug output")
		fmt.Fprintln(out, "  -d\tenable debug output (shorthand)")
		fmt.Fprintln(out, "  --version")
		fmt.Fprintln(out, "    \tshow version information")
		fmt.Fprintln(out, "  -v\tshow version information (shorthand)")
	}

	// アーカイブフラグ
	flag.StringVar(&config.ArchivePath, "archive", "", "path to .pck archive file (e.g. models.pck)")
	flag.StringVar(&config.ArchivePath, "a", "", "path to .pck archive file (shorthand)")

	// 一覧・抽出
	flag.BoolVar(&config.List, "list", false, "list entries")
	flag.BoolVar(&config.List, "l", false, "list entries (shorthand)")
	flag.BoolVar(&config.Extract, "extract", false, "extract entries")
	flag.BoolVar(&config.Extract, "x", false, "extract entries (shorthand)")

	// 出力ディレクトリ
	flag.StringVar(&config.OutputDir, "o", "", "output directory")

	// 失敗したエントリを飛ばして続行
	flag.BoolVar(&config.KeepGoing, "keep-going", false, "continue extracting after a failed entry")
	flag.BoolVar(&config.KeepGoing, "k", false, "continue extracting after a failed entry (shorthand)")

	// デバッグモード
	flag.BoolVar(&config.DebugMode, "debug", false, "enable debug output")
	flag.BoolVar(&config.DebugMode, "d", false, "enable debug output (shorthand)")

	// バージョン表示
	flag.BoolVar(&config.ShowVersion, "version", false, "show version information")
	flag.BoolVar(&config.ShowVersion, "v", false, "show version information (shorthand)")

	flag.Parse()

	config.applyArgs(flag.Args())

	return config
}

// applyArgs は位置引数を設定に反映します。
// -a が指定されていなければ最初の引数がアーカイブ、残りが抽出対象です。
func (c *Config) applyArgs(args []string) {
	if c.ArchivePath == "" && len(args) > 0 {
		c.ArchivePath = args[0]
		args = args[1:]
	}
	if len(args) > 0 {
		c.Targets = append([]string(nil), args...)
	}
}

// HandleVersion はバージョン表示を処理します
func HandleVersion(showVersion bool) {
	if showVersion {
		fmt.Printf("unpck version %s\n", Version)
		os.Exit(0)
	}
}

// DebugLogger はデバッグ出力を管理します
type DebugLogger struct {
	enabled bool
	out     io.Writer
}

// NewDebugLogger は標準出力に書き込む新しいDebugLoggerを作成します
func NewDebugLogger(enabled bool) *DebugLogger {
	return NewDebugLoggerWithWriter(enabled, os.Stdout)
}

// NewDebugLoggerWithWriter は出力先を指定してDebugLoggerを作成します
func NewDebugLoggerWithWriter(enabled bool, out io.Writer) *DebugLogger {
	return &DebugLogger{enabled: enabled, out: out}
}

// Enabled はデバッグモードが有効かを返します
func (d *DebugLogger) Enabled() bool {
	return d.enabled
}

// Printf はデバッグモードが有効な場合のみメッセージを表示します
func (d *DebugLogger) Printf(format string, a ...any) {
	if d.enabled {
		fmt.Fprintf(d.out, format, a...)
	}
}
