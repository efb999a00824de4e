package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vladslugin987/stock-simulator/internal/config"
	"github.com/vladslugin987/stock-simulator/internal/execution"
	"github.com/vladslugin987/stock-simulator/internal/paper"
	"github.com/vladslugin987/stock-simulator/internal/render"
	"github.com/vladslugin987/stock-simulator/internal/session"
	sig "github.com/vladslugin987/stock-simulator/internal/signal"
	"github.com/vladslugin987/stock-simulator/internal/util"
)

const (
	defaultConfigPath = "stocksim.yaml"
	recentTrades      = 10
)

func main() {
	path := configPath()
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ApplyEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "bad environment: %v\n", err)
		os.Exit(1)
	}
	log := util.ConsoleLogger(cfg.App.LogLevel)

	rt, err := session.Bootstrap(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("bootstrap")
	}
	defer rt.Close()
	s := rt.Session

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticks := make(chan sig.Tick, 64)
	go func() { _ = rt.Feed.Run(ctx, ticks) }()
	go func() { _ = s.Consume(ctx, ticks) }()

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Println("\n=== Stock Simulator ===")
		fmt.Println(render.Summary(s.Balance(), s.Holdings(), s.Market().Symbols()))
		if sel := s.Selected(); sel != "" {
			fmt.Printf("Selected: %s\n", sel)
		}
		fmt.Println("1) List stocks")
		fmt.Println("2) Select stock")
		fmt.Println("3) Buy one share")
		fmt.Println("4) Sell one share")
		fmt.Println("5) Portfolio")
		fmt.Println("6) Price history")
		fmt.Println("7) Watch selected stock")
		fmt.Println("8) Advance market one tick")
		fmt.Println("9) Add stock")
		fmt.Println("t) Recent trades")
		fmt.Println("s) Save config")
		fmt.Println("0) Exit")
		fmt.Print("Select option: ")

		input, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		switch strings.TrimSpace(input) {
		case "1":
			render.Quotes(os.Stdout, s.View().State())
		case "2":
			selectStock(reader, s, cfg.UI.ChartWidth)
		case "3":
			trade(s, execution.Buy)
		case "4":
			trade(s, execution.Sell)
		case "5":
			render.Portfolio(os.Stdout, s.Portfolio(), s.Market().Prices(), s.Market().Symbols())
		case "6":
			printSelected(s, cfg.UI.ChartWidth)
		case "7":
			watch(reader, s, cfg)
		case "8":
			rt.Feed.Step()
			s.Refresh()
			render.Quotes(os.Stdout, s.View().State())
		case "9":
			addStock(reader, s)
		case "t":
			render.Fills(os.Stdout, rt.Journal.Last(recentTrades))
		case "s":
			if err := config.Save(path, cfg); err != nil {
				fmt.Fprintf(os.Stderr, "save failed: %v\n", err)
			} else {
				fmt.Println("config saved")
			}
		case "0":
			return
		default:
			fmt.Println("unknown option")
		}
	}
}

func selectStock(reader *bufio.Reader, s *session.Session, width int) {
	fmt.Printf("Stocks: %s\n", strings.Join(s.Market().Symbols(), ", "))
	fmt.Print("Symbol (blank to clear): ")
	line, _ := reader.ReadString('\n')
	if err := s.Select(strings.TrimSpace(line)); err != nil {
		fmt.Println(err)
		return
	}
	printSelected(s, width)
}

func trade(s *session.Session, side execution.Side) {
	var (
		fill execution.Fill
		err  error
	)
	if side == execution.Buy {
		fill, err = s.Buy()
	} else {
		fill, err = s.Sell()
	}
	if err != nil {
		if paper.IsWarning(err) {
			fmt.Println("Warning:", s.View().State().Notice)
			return
		}
		fmt.Fprintf(os.Stderr, "trade failed: %v\n", err)
		return
	}
	verb := "Bought"
	if side == execution.Sell {
		verb = "Sold"
	}
	fmt.Printf("%s 1 %s at %d, balance %s\n", verb, fill.Symbol, fill.Price, render.Money(fill.BalanceAfter))
}

func printSelected(s *session.Session, width int) {
	q, ok := s.View().State().SelectedQuote()
	if !ok {
		fmt.Println("no stock selected")
		return
	}
	render.History(os.Stdout, q.Symbol, q.History, width)
}

// watch redraws the selected stock on the UI refresh period until ENTER.
func watch(reader *bufio.Reader, s *session.Session, cfg *config.Config) {
	if s.Selected() == "" {
		fmt.Println("no stock selected")
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		t := time.NewTicker(cfg.UI.RefreshPeriod())
		defer t.Stop()
		for {
			printSelected(s, cfg.UI.ChartWidth)
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
		}
	}()

	fmt.Println("Press ENTER to stop watching...")
	_, _ = reader.ReadString('\n')
	cancel()
	<-done
}

func addStock(reader *bufio.Reader, s *session.Session) {
	fmt.Print("Symbol: ")
	line, _ := reader.ReadString('\n')
	symbol := strings.TrimSpace(line)
	fmt.Print("Initial price: ")
	line, _ = reader.ReadString('\n')
	price, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
	if err != nil {
		fmt.Println("invalid price")
		return
	}
	if err := s.AddInstrument(symbol, price); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("added %s at %d\n", symbol, price)
}

func configPath() string {
	if p := os.Getenv("STOCKSIM_CONFIG"); p != "" {
		return p
	}
	return defaultConfigPath
}
