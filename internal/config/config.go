package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"

	"github.com/k-negishi/smart-timesheet/internal/calendar"
)

// SSMParameterGetter Parameter Storeからの取得（テストで差し替え可能）
type SSMParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Config アプリケーション設定構造体
type Config struct {
	// 暦計算・表示
	Timezone  string
	FirstHour int
	HourCount int

	// Gemini API設定
	GeminiAPIKey string
	GeminiModel  string

	// Google Calendar設定
	GoogleCredentials string
	CalendarID        string

	// LINE API設定
	LineChannelAccessToken string
	LineUserID             string

	// 予定とタスクの入力
	TasksFile  string
	EventsFile string
	ICSURLs    []string

	// HTTPサーバー
	ListenAddr      string
	RefreshCron     string
	GenerateTimeout time.Duration
	CORSOrigins     []string

	// その他設定
	LogLevel string

	// AWS関連（本番環境でのみ使用）
	ssmClient SSMParameterGetter
}

// Load 環境に応じて設定を読み込み
func Load(ctx context.Context) (*Config, error) {
	// AWS Lambda環境かどうか判定
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		return loadAWSConfig(ctx)
	}
	return loadLocalConfig()
}

// loadLocalConfig ローカル開発環境用の設定読み込み
func loadLocalConfig() (*Config, error) {
	// .envファイルを読み込み（存在する場合のみ）
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf(".envファイルの読み込みに失敗しました: %w", err)
	}

	cfg, err := loadFromEnv()
	if err != nil {
		return nil, err
	}
	cfg.GeminiAPIKey = getEnvOrDefault("GEMINI_API_KEY", "")
	cfg.GoogleCredentials = getEnvOrDefault("GOOGLE_CREDENTIALS", "")
	cfg.LineChannelAccessToken = getEnvOrDefault("LINE_CHANNEL_ACCESS_TOKEN", "")
	cfg.LineUserID = getEnvOrDefault("LINE_USER_ID", "")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadAWSConfig AWS Lambda環境用の設定読み込み
func loadAWSConfig(ctx context.Context) (*Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("AWS設定の読み込みに失敗しました: %w", err)
	}

	cfg, err := loadFromEnv()
	if err != nil {
		return nil, err
	}
	cfg.ssmClient = ssm.NewFromConfig(awsCfg)

	// Parameter Storeから機密情報を取得
	if err := cfg.loadFromParameterStore(ctx); err != nil {
		return nil, fmt.Errorf("Parameter Storeからの設定読み込みに失敗しました: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromEnv 機密情報以外の設定を環境変数から読み込み
func loadFromEnv() (*Config, error) {
	firstHour, err := getEnvInt("FIRST_HOUR", 7)
	if err != nil {
		return nil, err
	}
	hourCount, err := getEnvInt("HOUR_COUNT", 13)
	if err != nil {
		return nil, err
	}
	generateTimeout, err := getEnvDuration("GENERATE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}

	return &Config{
		Timezone:    getEnvOrDefault("TIMEZONE", "Asia/Tokyo"),
		FirstHour:   firstHour,
		HourCount:   hourCount,
		GeminiModel: getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		CalendarID:  getEnvOrDefault("CALENDAR_ID", "primary"),
		TasksFile:   getEnvOrDefault("TASKS_FILE", ""),
		EventsFile:  getEnvOrDefault("EVENTS_FILE", ""),
		ICSURLs:     splitList(getEnvOrDefault("ICS_URLS", "")),
		ListenAddr:  getEnvOrDefault("LISTEN_ADDR", ":8080"),
		RefreshCron: getEnvOrDefault("REFRESH_CRON", "*/15 * * * *"),
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "INFO"),

		GenerateTimeout: generateTimeout,
		CORSOrigins:     splitList(getEnvOrDefault("CORS_ORIGINS", "http://localhost:*")),
	}, nil
}

// loadFromParameterStore Parameter Storeから機密情報を読み込み
func (c *Config) loadFromParameterStore(ctx context.Context) error {
	params := []struct {
		envKey       string
		defaultName  string
		label        string
		required     bool
		assignTarget *string
	}{
		{"GOOGLE_CREDS_PARAM", "/smart-timesheet/google-creds", "Google認証情報", true, &c.GoogleCredentials},
		{"LINE_CHANNEL_ACCESS_TOKEN_PARAM", "/smart-timesheet/line-channel-access-token", "LINE Channel Access Token", true, &c.LineChannelAccessToken},
		{"LINE_USER_ID_PARAM", "/smart-timesheet/line-user-id", "LINE User ID", true, &c.LineUserID},
		{"GEMINI_API_KEY_PARAM", "/smart-timesheet/gemini-api-key", "Gemini APIキー", false, &c.GeminiAPIKey},
	}

	for _, p := range params {
		value, err := c.getParameter(ctx, getEnvOrDefault(p.envKey, p.defaultName), true)
		if err != nil {
			if !p.required {
				continue
			}
			return fmt.Errorf("%sの取得に失敗しました: %w", p.label, err)
		}
		*p.assignTarget = value
	}

	return nil
}

// getParameter Parameter Storeから指定されたパラメータを取得
func (c *Config) getParameter(ctx context.Context, paramName string, withDecryption bool) (string, error) {
	input := &ssm.GetParameterInput{
		Name:           aws.String(paramName),
		WithDecryption: aws.Bool(withDecryption),
	}

	result, err := c.ssmClient.GetParameter(ctx, input)
	if err != nil {
		return "", fmt.Errorf("パラメータ %s の取得に失敗しました: %w", paramName, err)
	}

	if result.Parameter == nil || result.Parameter.Value == nil || *result.Parameter.Value == "" {
		return "", fmt.Errorf("パラメータ %s が空の値です", paramName)
	}

	return *result.Parameter.Value, nil
}

// Validate 設定値の整合性を確認
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TIMEZONEが不正です: %w", err)
	}
	if c.FirstHour < 0 || c.HourCount <= 0 || c.FirstHour+c.HourCount > 24 {
		return fmt.Errorf("表示時間帯が不正です: FIRST_HOUR=%d HOUR_COUNT=%d", c.FirstHour, c.HourCount)
	}
	if c.GoogleCredentials != "" {
		if _, err := c.GetGoogleCredentialsJSON(); err != nil {
			return err
		}
	}
	return nil
}

// Location 暦計算に使うタイムゾーン
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Calendar 設定したタイムゾーンの暦計算
func (c *Config) Calendar() calendar.Calendar {
	return calendar.New(c.Location())
}

// DayLayout 日表示の時間軸設定
func (c *Config) DayLayout() calendar.DayLayout {
	layout := calendar.DefaultDayLayout()
	layout.FirstHour = c.FirstHour
	layout.HourCount = c.HourCount
	return layout
}

// GetGoogleCredentialsJSON Google認証情報をJSONとして解析
func (c *Config) GetGoogleCredentialsJSON() (map[string]interface{}, error) {
	var credentials map[string]interface{}
	if err := json.Unmarshal([]byte(c.GoogleCredentials), &credentials); err != nil {
		return nil, fmt.Errorf("Google認証情報のJSON解析に失敗しました: %w", err)
	}
	return credentials, nil
}

// getEnvOrDefault 環境変数を取得し、存在しない場合はデフォルト値を返す
func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt 整数の環境変数を取得
func getEnvInt(key string, defaultValue int) (int, error) {
	raw := getEnvOrDefault(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%sは整数で指定してください: %w", key, err)
	}
	return v, nil
}

// getEnvDuration 時間（"90s" "2m" など）の環境変数を取得。0以下は不正
func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := getEnvOrDefault(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%sは時間（例: 90s）で指定してください: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%sは正の時間で指定してください: %s", key, raw)
	}
	return d, nil
}

// splitList カンマ区切りの値を分割（空要素は除く）
func splitList(s string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
