package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/joho/godotenv"

	"github.com/zhouzirui/feelbetter/backend/internal/config"
	"github.com/zhouzirui/feelbetter/backend/internal/service/ai"
	"github.com/zhouzirui/feelbetter/backend/internal/service/emotion"
)

var sampleUtterances = []string{
	"I'm so happy today!",
	"This makes me really angry",
	"I'm feeling sad and lonely",
	"Wow, that's amazing!",
	"I'm worried about the exam",
}

const defaultPrompt = "Say 'Hello, I am working!' in exactly those words."

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] 无法加载 .env，改用系统环境变量: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}

	mode := flag.String("mode", "", "测试模式: emotion 或 llm")
	text := flag.String("text", "", "输入文本，留空则使用内置样例")
	timeout := flag.Duration("timeout", 45*time.Second, "请求超时时间")

	flag.Parse()

	if *mode != "emotion" && *mode != "llm" {
		flag.Usage()
		log.Fatal("请通过 -mode=emotion 或 -mode=llm 指定测试模式")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch *mode {
	case "emotion":
		runEmotion(ctx, cfg, *text)
	case "llm":
		runLLM(ctx, cfg, *text)
	}
}

func runEmotion(ctx context.Context, cfg *config.Config, text string) {
	var generator ai.Generator
	if cfg.Emotion.Provider == config.EmotionLLM {
		aiSvc, err := ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Fatalf("llm 情绪后端需要可用的文本生成服务: %v", err)
		}
		generator = aiSvc
	}

	svc := emotion.NewService(cfg.Emotion, generator)
	if !svc.Enabled() {
		log.Fatalf("情绪识别未启用: provider=%s，请检查 EMOTION_* 与 HUGGINGFACE_API_KEY", cfg.Emotion.Provider)
	}

	inputs := sampleUtterances
	if text != "" {
		inputs = []string{text}
	}

	log.Printf("开始进行情绪识别测试: provider=%s samples=%d", svc.Provider(), len(inputs))
	for _, input := range inputs {
		start := time.Now()
		label := svc.Classify(ctx, input)
		fmt.Printf("%-40q -> %s (%s)\n", input, label, time.Since(start).Round(time.Millisecond))
	}
}

func runLLM(ctx context.Context, cfg *config.Config, text string) {
	aiSvc, err := ai.NewService(ctx, cfg.AI)
	if err != nil {
		log.Fatalf("文本生成服务初始化失败: %v", err)
	}

	prompt := text
	if prompt == "" {
		prompt = defaultPrompt
	}

	log.Printf("开始进行 LLM 测试: provider=%s", aiSvc.Provider())

	reply, err := aiSvc.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		log.Fatalf("LLM 调用失败: %v", err)
	}

	fmt.Println(ai.Normalize(reply))
	log.Println("LLM 测试完成")
}
