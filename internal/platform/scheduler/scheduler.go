// Package scheduler はキャッシュを定期的に温め直すジョブを実行します。
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job は1回分のリフレッシュ処理です。
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Scheduler は登録されたジョブを一定間隔で順に実行します。
// 前回の実行が終わっていない場合、その回はスキップされます。
type Scheduler struct {
	cron     *cron.Cron
	interval time.Duration
	timeout  time.Duration
	jobs     []Job
}

// New は interval ごとにジョブを実行する Scheduler を作成します。
// timeout は1回の実行（全ジョブ）に与える上限時間で、0以下なら interval を使います。
func New(interval, timeout time.Duration) *Scheduler {
	if timeout <= 0 {
		timeout = interval
	}
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.DefaultLogger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
		interval: interval,
		timeout:  timeout,
	}
}

// Add はジョブを登録します。Start の前に呼び出してください。
func (s *Scheduler) Add(name string, run func(ctx context.Context) error) {
	s.jobs = append(s.jobs, Job{Name: name, Run: run})
}

// Start は定期実行を開始します。
func (s *Scheduler) Start() {
	s.cron.Schedule(cron.Every(s.interval), cron.FuncJob(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.RunNow(ctx)
	}))
	s.cron.Start()
	slog.Info("refresh scheduler started", "interval", s.interval, "jobs", len(s.jobs))
}

// Stop は新しい実行を止め、実行中のジョブが終わると完了するコンテキストを返します。
func (s *Scheduler) Stop() context.Context {
	ctx := s.cron.Stop()
	slog.Info("refresh scheduler stopped")
	return ctx
}

// RunNow は登録順に全ジョブを1回実行します。失敗はログに出力し、次のジョブへ進みます。
// 失敗したジョブ数を返します。
func (s *Scheduler) RunNow(ctx context.Context) int {
	failed := 0
	for _, j := range s.jobs {
		start := time.Now()
		if err := j.Run(ctx); err != nil {
			failed++
			slog.Error("refresh job failed", "job", j.Name, "error", err)
			continue
		}
		slog.Debug("refresh job done", "job", j.Name, "elapsed", time.Since(start))
	}
	return failed
}
