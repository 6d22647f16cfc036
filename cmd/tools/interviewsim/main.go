package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/joho/godotenv"

	"github.com/zhouzirui/interview-partner/backend/internal/analysis/feedback"
	"github.com/zhouzirui/interview-partner/backend/internal/analysis/scoring"
	"github.com/zhouzirui/interview-partner/backend/internal/config"
	model "github.com/zhouzirui/interview-partner/backend/internal/model/interview"
	"github.com/zhouzirui/interview-partner/backend/internal/model/persona"
	"github.com/zhouzirui/interview-partner/backend/internal/service/ai"
	"github.com/zhouzirui/interview-partner/backend/internal/service/classifier"
	"github.com/zhouzirui/interview-partner/backend/internal/service/interview"
	"github.com/zhouzirui/interview-partner/backend/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	role := flag.String("role", "engineer", "面试岗位")
	answersPath := flag.String("answers", "", "回答文件，每行一条；留空则读取标准输入")
	maxQuestions := flag.Int("max", 0, "问题数量上限，默认使用配置")
	tuningPath := flag.String("tuning", "", "TOML 常量表路径，默认使用 INTERVIEW_TUNING_FILE")
	useAI := flag.Bool("ai", false, "使用 Ark 模型生成问题与分类")
	timeout := flag.Duration("timeout", 2*time.Minute, "整体超时时间")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] 无法加载 .env，改用系统环境变量: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}
	if *tuningPath == "" {
		*tuningPath = cfg.Interview.TuningFile
	}
	tuning, err := config.LoadTuning(*tuningPath)
	if err != nil {
		log.Fatalf("常量表加载失败: %v", err)
	}
	if *maxQuestions <= 0 {
		*maxQuestions = cfg.Interview.MaxQuestions
	}

	answers, err := readAnswers(*answersPath)
	if err != nil {
		log.Fatalf("读取回答失败: %v", err)
	}
	if len(answers) == 0 {
		log.Fatal("没有可用的回答")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var semantic classifier.Semantic
	var generator interview.QuestionGenerator = interview.BankGenerator{}
	if *useAI {
		if !cfg.AI.Enabled() {
			log.Fatal("未配置 Ark 凭证，无法启用 -ai")
		}
		chatModel, err := cfg.AI.NewChatModel(ctx)
		if err != nil {
			log.Fatalf("创建模型失败: %v", err)
		}
		aiSvc, err := ai.NewService(ctx, chatModel, persona.NewMemoryStore(persona.Seed()))
		if err != nil {
			log.Fatalf("初始化 AI 服务失败: %v", err)
		}
		semantic, generator = aiSvc, aiSvc
	}

	manager := interview.NewManager(
		classifier.NewService(semantic, classifier.Config{
			Enabled:      *useAI,
			HistoryLimit: cfg.Interview.ClassifyHistory,
			Timeout:      cfg.Interview.CollaboratorTimeout,
			Rules:        tuning.Fallback,
		}),
		generator,
		scoring.NewEngine(tuning.Scoring),
		feedback.NewGenerator(),
		interview.Options{MaxQuestions: *maxQuestions, GenerateTimeout: cfg.Interview.CollaboratorTimeout},
	)
	svc := interview.NewService(manager, store.NewMemoryStore())

	report, err := simulate(ctx, svc, *role, answers, os.Stderr)
	if err != nil {
		log.Fatalf("模拟面试失败: %v", err)
	}

	out, err := sonic.ConfigStd.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Fatalf("编码报告失败: %v", err)
	}
	fmt.Println(string(out))
}

// simulate replays answers until the interview concludes and returns the report.
// Answers beyond the question limit are ignored.
func simulate(ctx context.Context, svc *interview.Service, role string, answers []string, transcript io.Writer) (interview.Report, error) {
	session, opening, err := svc.Start(ctx, role)
	if err != nil {
		return interview.Report{}, err
	}
	fmt.Fprintf(transcript, "Q1 [%s]: %s\n", opening.Persona, opening.Message)

	for _, answer := range answers {
		fmt.Fprintf(transcript, "A: %s\n", answer)

		result, err := svc.Respond(ctx, session.ID, answer)
		if err != nil {
			return interview.Report{}, err
		}

		switch turn := result.(type) {
		case model.QuestionTurn:
			fmt.Fprintf(transcript, "Q%d [%s]: %s\n", turn.QuestionNumber, turn.Persona, turn.Message)
		case model.ConclusionTurn:
			fmt.Fprintf(transcript, "== %s\n", turn.Message)
			return svc.Report(ctx, session.ID)
		}
	}
	return interview.Report{}, fmt.Errorf("ran out of answers after %d, interview still active", len(answers))
}

func readAnswers(path string) ([]string, error) {
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var answers []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		answers = append(answers, line)
	}
	return answers, scanner.Err()
}
