package cmd

import (
	"fmt"

	"simpleink/storage"

	"github.com/spf13/cobra"
)

var (
	minioBucket string
	minioDelete string
)

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "MinIO存储桶管理",
	Long:  `列出上传目录（imagens、audios 等）中的文件和统计信息，或删除单个文件。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		fmt.Printf("MinIO配置: %s, Bucket: %s\n", cfg.MinioEndpoint, cfg.MinioBucket)

		store, err := storage.NewMinioStore(ctx, cfg)
		if err != nil {
			return fmt.Errorf("无法连接到MinIO: %w", err)
		}

		if minioDelete != "" {
			if err := store.Remove(ctx, minioBucket, minioDelete); err != nil {
				return fmt.Errorf("删除文件失败: %w", err)
			}
			fmt.Printf("已删除 %s/%s\n", minioBucket, minioDelete)
			return nil
		}

		objects, stats, err := store.List(ctx, minioBucket)
		if err != nil {
			return fmt.Errorf("列出文件失败: %w", err)
		}
		for _, obj := range objects {
			fmt.Printf("%-60s %10s  %s\n", obj.Key, storage.FormatSize(obj.Size), obj.LastModified.Format("2006-01-02 15:04:05"))
		}
		fmt.Printf("\n%s: %d 个文件, 共 %s\n", minioBucket, stats.TotalObjects, storage.FormatSize(stats.TotalSize))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(minioCmd)

	minioCmd.Flags().StringVarP(&minioBucket, "bucket", "b", "audios", "上传目录（bucket 字段）")
	minioCmd.Flags().StringVarP(&minioDelete, "delete", "d", "", "删除指定文件")

	minioCmd.Example = `  # 列出 audios 中的文件
  simpleink minio

  # 列出封面图片
  simpleink minio -b imagens

  # 删除文件
  simpleink minio -b audios -d p1.mp3`
}
