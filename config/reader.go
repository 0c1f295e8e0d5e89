package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

type DBConfig struct {
	DBName   string `yaml:"name"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type ConfigSchema struct {
	Databases struct {
		// Driver: "postgres" или "sqlite". Для sqlite используется только Master.DBName (путь к файлу).
		Driver   string     `yaml:"driver"`
		Master   DBConfig   `yaml:"master"`
		Replicas []DBConfig `yaml:"replicas"`
	} `yaml:"databases"`
	Redis struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	RabbitMQ struct {
		URL string `yaml:"url"`
	} `yaml:"rabbitmq"`
	Backend struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"backend"`
	Chat struct {
		// Интервал опроса для чат-клиентов, в секундах (2-10 в известных инсталляциях)
		PollIntervalSeconds int `yaml:"poll_interval_seconds"`
	} `yaml:"chat"`
	Notifications struct {
		IntervalMinutes int    `yaml:"interval_minutes"`
		AdminEmail      string `yaml:"admin_email"`
		SMTP            struct {
			Host string `yaml:"host"`
			Port int    `yaml:"port"`
			From string `yaml:"from"`
		} `yaml:"smtp"`
	} `yaml:"notifications"`
}

var AppConfig *ConfigSchema

func LoadConfig(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	conf := &ConfigSchema{}
	if err := yaml.Unmarshal(data, conf); err != nil {
		return err
	}
	applyDefaults(conf)
	AppConfig = conf
	return nil
}

func applyDefaults(conf *ConfigSchema) {
	if conf.Chat.PollIntervalSeconds == 0 {
		conf.Chat.PollIntervalSeconds = 10
	}
	if conf.Notifications.IntervalMinutes == 0 {
		conf.Notifications.IntervalMinutes = 1
	}
}
