package main

import (
	"bufio"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"CharacterChat/internal/ai"
	"CharacterChat/internal/app/orchestrator"
	"CharacterChat/internal/config"
	"CharacterChat/internal/service/audio"
	"CharacterChat/internal/service/character"
	"CharacterChat/internal/service/mode"
	"CharacterChat/internal/service/session"

	"go.uber.org/zap"
)

// Терминальный компаньон: полный движок сессии в вырожденном локальном
// развёртывании. Лента диалогов живёт в снимке на диске, голосовые ответы
// проигрываются через динамики.
func main() {
	cfg := config.NewConfig()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	sugar := logger.Sugar()
	defer func() { _ = logger.Sync() }()

	gw, err := ai.NewGateway(cfg.AI, sugar)
	if err != nil {
		sugar.Fatalw("Не удалось создать шлюз провайдера", "error", err)
	}

	char := character.Character{
		Slug:              cfg.Character.Slug,
		DisplayName:       cfg.Character.DisplayName,
		ReferenceImageURL: cfg.Character.ReferenceImageURL,
	}
	store := session.NewStore(cfg.DefaultThreadName)
	files := session.NewFileStore(cfg.SnapshotPath, sugar)
	if st, ok := files.Load(); ok {
		store.Restore(st)
		sugar.Infow("Сессия восстановлена из снимка", "path", cfg.SnapshotPath, "threads", len(st.Threads))
	}

	modes := mode.New()
	orch := orchestrator.New(cfg, orchestrator.GatewaysFrom(gw), store, modes, char, files, sugar)
	player := audio.New()

	name := char.DisplayName
	if name == "" {
		name = "компаньон"
	}
	fmt.Printf("Собеседник: %s. Команды: /image /edit /voice /new /threads /switch N /delete N /quit\n", name)

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Printf("%s> ", promptLabel(modes))
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if quit := command(store, modes, char, line); quit {
				break
			}
			continue
		}

		out := orch.Submit(ctx, line)
		if out == nil {
			continue
		}
		render(out, player)
	}
	files.Save(store.Snapshot())
}

func promptLabel(modes *mode.Controller) string {
	m, edit := modes.State()
	switch {
	case m == mode.Image && edit:
		return "[правка]"
	case m == mode.Image:
		return "[картинка]"
	case m == mode.Voice:
		return "[голос]"
	default:
		return ""
	}
}

// command обрабатывает слэш‑команды; true означает выход.
func command(store *session.Store, modes *mode.Controller, char character.Character, line string) bool {
	fields := strings.Fields(line)
	arg := ""
	if len(fields) > 1 {
		arg = strings.Join(fields[1:], " ")
	}
	switch fields[0] {
	case "/quit", "/exit":
		return true
	case "/image":
		modes.ToggleImage()
	case "/voice":
		modes.ToggleVoice()
	case "/edit":
		modes.ToggleImage()
		modes.RequestEdit(true)
		if !char.Editable() {
			fmt.Println("У персонажа нет референсного изображения — будет обычная генерация")
		}
	case "/new":
		t := store.CreateThread(arg)
		store.SelectThread(t.ID)
		fmt.Printf("Создан диалог: %s\n", t.Name)
	case "/threads":
		active := store.ActiveThreadID()
		for i, t := range store.Threads() {
			marker := " "
			if t.ID == active {
				marker = "*"
			}
			fmt.Printf("%s %d. %s (%d сообщений)\n", marker, i+1, t.Name, len(t.Messages))
		}
	case "/switch":
		if t, ok := threadByArg(store, arg); ok {
			store.SelectThread(t.ID)
			fmt.Printf("Активен диалог: %s\n", t.Name)
		} else {
			fmt.Println("Диалог не найден")
		}
	case "/delete":
		t, ok := threadByArg(store, arg)
		if !ok {
			fmt.Println("Диалог не найден")
			break
		}
		if err := store.DeleteThread(t.ID); err != nil {
			fmt.Printf("Нельзя удалить: %v\n", err)
		} else {
			fmt.Printf("Удалён диалог: %s\n", t.Name)
		}
	default:
		fmt.Println("Неизвестная команда")
	}
	return false
}

func threadByArg(store *session.Store, arg string) (session.Thread, bool) {
	threads := store.Threads()
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(threads) {
		return threads[n-1], true
	}
	for _, t := range threads {
		if t.ID == arg || t.Name == arg {
			return t, true
		}
	}
	return session.Thread{}, false
}

// render печатает результаты хода: текст в консоль, картинки на диск,
// голос в динамики.
func render(out *orchestrator.Outcome, player audio.Player) {
	for _, m := range out.Messages {
		if m.Role != session.RoleAssistant {
			continue
		}
		switch m.Kind {
		case session.KindText:
			fmt.Println(m.Content)
		case session.KindImage:
			path, err := saveImage(m)
			if err != nil {
				fmt.Printf("Не удалось сохранить изображение: %v\n", err)
			} else {
				fmt.Printf("Изображение сохранено: %s\n", path)
			}
		case session.KindAudio:
			data, err := base64.StdEncoding.DecodeString(m.AudioData)
			if err == nil {
				err = player.Play(m.MimeType, data)
			}
			if err != nil {
				fmt.Printf("Не удалось проиграть ответ: %v\n", err)
			}
		}
	}
	if out.Failed() {
		fmt.Printf("Ход завершился ошибкой: %s\n", out.Err)
	}
}

func saveImage(m session.Message) (string, error) {
	data, err := base64.StdEncoding.DecodeString(m.ImageData)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll("images", 0o755); err != nil {
		return "", err
	}
	path := filepath.Join("images", m.ID+".png")
	return path, os.WriteFile(path, data, 0o644)
}
