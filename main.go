package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ByLCY/reflow/document"
	"github.com/ByLCY/reflow/dsl"
	"github.com/ByLCY/reflow/hittest"
	"github.com/ByLCY/reflow/layout"
	"github.com/ByLCY/reflow/markup"
	"github.com/ByLCY/reflow/paint"
	"github.com/ByLCY/reflow/renderer"
	canvasrenderer "github.com/ByLCY/reflow/renderer/canvas"
	"github.com/ByLCY/reflow/renderer/raster"
)

// config 汇总命令行参数。
type config struct {
	input    string
	output   string
	backend  string
	debug    string
	data     string
	tap      string
	obstacle bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.input, "in", "examples/demo.reflow", "场景文件路径")
	flag.StringVar(&cfg.output, "out", "output/demo.pdf", "输出路径")
	flag.StringVar(&cfg.backend, "backend", "pdf", "输出后端：pdf 或 png")
	flag.StringVar(&cfg.debug, "debug", "", "排版调试 JSON 输出路径")
	flag.StringVar(&cfg.data, "data", "", "绑定到场景的 JSON 数据")
	flag.StringVar(&cfg.tap, "tap", "", "模拟一次点击，格式 x,y")
	flag.BoolVar(&cfg.obstacle, "show-obstacles", false, "绘制障碍物轮廓")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Parse()

	if *verbose {
		layout.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	if err := run(cfg, os.Stdout); err != nil {
		log.Fatalf("生成失败: %v", err)
	}
	fmt.Printf("已生成 %s：%s\n", strings.ToUpper(cfg.backend), cfg.output)
}

// run 串联解析、排版、绘制与点击模拟。
func run(cfg config, stdout io.Writer) error {
	file, err := os.Open(cfg.input)
	if err != nil {
		return fmt.Errorf("无法打开场景文件 %s: %w", cfg.input, err)
	}
	defer file.Close()

	doc, err := dsl.Parse(file)
	if err != nil {
		return fmt.Errorf("解析场景失败: %w", err)
	}
	scene, err := document.Build(doc, []byte(cfg.data))
	if err != nil {
		return fmt.Errorf("构建场景失败: %w", err)
	}
	scene.Content = markup.BindLinks(scene.Content, func(l layout.Link) {
		fmt.Fprintf(stdout, "点击链接：%s\n", l.Target)
	})

	backend, err := newBackend(cfg.backend, filepath.Dir(cfg.input), scene)
	if err != nil {
		return err
	}

	result, err := layout.Layout(scene.Content, scene.Geometry, scene.Options(backend))
	if err != nil {
		return fmt.Errorf("排版失败: %w", err)
	}
	if cfg.debug != "" {
		if err := writeDebug(result, cfg.debug); err != nil {
			return err
		}
	}

	height := result.Height
	if scene.PageHeight > 0 {
		height = scene.PageHeight
	}
	if height < scene.LineHeight {
		height = scene.LineHeight
	}
	page, err := backend.NewDocument(scene.Width, height)
	if err != nil {
		return fmt.Errorf("创建页面失败: %w", err)
	}
	r := renderer.New(page, paint.NewPool(scene.Palette), &hittest.Registry{})
	r.ShowObstacles = cfg.obstacle
	if err := r.Draw(result); err != nil {
		return fmt.Errorf("绘制失败: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.output), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	data, err := page.Encode()
	if err != nil {
		return fmt.Errorf("编码输出失败: %w", err)
	}
	if err := os.WriteFile(cfg.output, data, 0o644); err != nil {
		return fmt.Errorf("写入输出文件失败: %w", err)
	}

	if cfg.tap != "" {
		x, y, err := parseTap(cfg.tap)
		if err != nil {
			return err
		}
		tester := hittest.NewTester(r.Registry())
		tester.PointerDown(x, y)
		if !tester.PointerUp(x, y) {
			fmt.Fprintf(stdout, "(%g, %g) 处没有链接\n", x, y)
		}
	}
	return nil
}

func newBackend(name, baseDir string, scene *document.Scene) (renderer.Backend, error) {
	switch strings.ToLower(name) {
	case "pdf", "":
		b, err := canvasrenderer.NewBackendWithOptions(canvasrenderer.Options{
			BaseDir: baseDir,
			Font:    scene.Font,
			Meta:    canvasrenderer.Meta(scene.Meta),
		})
		if err != nil {
			return nil, fmt.Errorf("初始化 PDF 后端失败: %w", err)
		}
		return b, nil
	case "png":
		b, err := raster.NewBackend(baseDir, scene.Font, nil)
		if err != nil {
			return nil, fmt.Errorf("初始化 PNG 后端失败: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("未知的后端 %q（可选 pdf、png）", name)
	}
}

// parseTap 解析 "x,y" 形式的点击坐标。
func parseTap(s string) (float64, float64, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("点击坐标格式应为 x,y: %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("点击坐标 x 无效: %w", err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("点击坐标 y 无效: %w", err)
	}
	return x, y, nil
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
