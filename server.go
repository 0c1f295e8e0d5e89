package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"adminchat/api/middleware"
	"adminchat/api/routes"
	"adminchat/config"
	"adminchat/db"
	"adminchat/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	err := config.LoadConfig(configPath)
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	log.Println("Starting server...")

	if err := db.ConnectDB(); err != nil {
		panic("Failed to connect to the database: " + err.Error())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis опционален: без него счетчики непрочитанных всегда считаются по базе
	var counters *services.CounterCache
	if config.AppConfig.Redis.Host != "" {
		if err := services.InitRedis(); err != nil {
			log.Printf("Redis unavailable, unread counters will be computed from the database: %v", err)
		} else {
			counters = services.NewCounterCache(services.RedisClient)
			defer services.CloseRedis()
		}
	}

	directory := services.NewDirectoryService()
	messages := services.NewMessageService(counters)
	summaries := services.NewSummaryService(directory, counters)

	var mailer services.Mailer = &services.LogMailer{}
	smtpConf := config.AppConfig.Notifications.SMTP
	if smtpConf.Host != "" {
		mailer = &services.SMTPMailer{Host: smtpConf.Host, Port: smtpConf.Port, From: smtpConf.From}
	}

	if config.AppConfig.RabbitMQ.URL != "" {
		if err := services.InitRabbitMQ(config.AppConfig.RabbitMQ.URL); err != nil {
			log.Printf("RabbitMQ unavailable, notifications will be mailed directly: %v", err)
		} else {
			defer services.CloseRabbitMQ()
			if err := services.StartNotificationConsumer(ctx, "chat_notifications", mailer); err != nil {
				log.Printf("Failed to start notification consumer: %v", err)
			}
		}
	}

	notifier := services.NewNotifier(
		messages,
		directory,
		mailer,
		config.AppConfig.Notifications.AdminEmail,
		time.Duration(config.AppConfig.Notifications.IntervalMinutes)*time.Minute,
	)
	go notifier.Run(ctx)

	router := gin.Default()

	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.PrometheusMiddleware("adminchat"))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	routes.ChatApi(router, messages, summaries, directory)

	addr := fmt.Sprintf(":%d", config.AppConfig.Backend.Port)
	if config.AppConfig.Backend.Port == 0 {
		addr = ":8080"
	}
	if err := router.Run(addr); err != nil {
		panic(err)
	}
}
