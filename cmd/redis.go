package cmd

import (
	"context"
	"fmt"
	"time"

	"simpleink/cache"

	"github.com/spf13/cobra"
)

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Redis连接测试",
	Long:  `测试Redis连接是否成功，并对缓存键做一次读写和失效操作。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Redis配置: %s:%s, DB: %d\n", cfg.RedisHost, cfg.RedisPort, cfg.RedisDB)

		client, err := cache.NewRedisClient(cfg)
		if err != nil {
			return fmt.Errorf("无法连接到Redis: %w", err)
		}
		store := cache.NewRedisStore(client, time.Minute)
		defer store.Close()
		fmt.Println("Redis连接成功！")

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()

		key := cache.PlaylistKey("redis-check")
		if err := store.Set(ctx, key, map[string]string{"status": "ok"}); err != nil {
			return fmt.Errorf("写入失败: %w", err)
		}
		var got map[string]string
		if ok, err := store.Get(ctx, key, &got); err != nil || !ok {
			return fmt.Errorf("读取失败: found=%v err=%v", ok, err)
		}
		if err := store.Invalidate(ctx, key); err != nil {
			return fmt.Errorf("删除失败: %w", err)
		}
		fmt.Println("Redis基本操作测试成功！")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(redisCmd)
}
