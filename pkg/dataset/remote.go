package dataset

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"sentiment-lens/config"
	"sentiment-lens/pkg/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type downloadFunc func(ctx context.Context, source string) (io.ReadCloser, error)

// loadRemote 下载到临时文件后按本地文件读取，文件扩展名沿用远程路径
func (l *Loader) loadRemote(ctx context.Context, source string, download downloadFunc) (*model.Dataset, error) {
	u, err := url.Parse(source)
	if err != nil {
		return nil, errors.Wrapf(err, "无效的数据集地址 %s", source)
	}

	body, err := download(ctx, source)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	file, cleanup, err := writeTemp(path.Base(u.Path), body, l.maxBytes())
	if err != nil {
		return nil, err
	}
	defer cleanup()

	zap.S().Debugf("已下载 %s 到 %s", source, file)
	ds, err := l.LoadFile(ctx, file)
	if err != nil {
		return nil, err
	}
	ds.Source = source
	return ds, nil
}

func (l *Loader) maxBytes() int64 {
	if l.storage.HTTP == nil {
		return 0
	}
	return l.storage.HTTP.MaxBytes
}

// downloadFromURL 从 HTTP(S) 地址下载
func (l *Loader) downloadFromURL(ctx context.Context, source string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, errors.Wrap(err, "创建下载请求失败")
	}

	client := &http.Client{}
	if l.storage.HTTP != nil {
		client.Timeout = l.storage.HTTP.Timeout
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "下载数据集失败")
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errors.Errorf("下载数据集失败, 状态码 %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// downloadFromS3 读取 s3://bucket/key
func (l *Loader) downloadFromS3(ctx context.Context, source string) (io.ReadCloser, error) {
	bucket, key, err := parseS3URI(source)
	if err != nil {
		return nil, err
	}

	client, err := l.s3()
	if err != nil {
		return nil, err
	}
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "读取 s3 对象 %s 失败", source)
	}
	return out.Body, nil
}

func (l *Loader) s3() (*s3.Client, error) {
	l.s3Once.Do(func() {
		l.s3Client, l.s3Err = newS3Client(context.Background(), l.storage)
	})
	return l.s3Client, l.s3Err
}

func newS3Client(ctx context.Context, storage *config.StorageConfig) (*s3.Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if storage.S3 != nil && storage.S3.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(storage.S3.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "加载 AWS 配置失败")
	}

	var opts []func(*s3.Options)
	if storage.S3 != nil && storage.S3.Endpoint != "" {
		// MinIO 等兼容服务
		endpoint := storage.S3.Endpoint
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = &endpoint
			o.UsePathStyle = true
		})
	}
	return s3.NewFromConfig(awsCfg, opts...), nil
}

func parseS3URI(source string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(source, "s3://")
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", errors.Errorf("无效的 s3 地址 %q, 格式应为 s3://bucket/key", source)
	}
	return bucket, key, nil
}

// writeTemp 把内容写入带原扩展名的临时文件，limit > 0 时超出大小报错
func writeTemp(name string, r io.Reader, limit int64) (string, func(), error) {
	f, err := os.CreateTemp("", "sentiment-*"+path.Ext(name))
	if err != nil {
		return "", nil, errors.Wrap(err, "创建临时文件失败")
	}
	cleanup := func() { os.Remove(f.Name()) }

	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		cleanup()
		return "", nil, errors.Wrap(err, "写入临时文件失败")
	}
	if limit > 0 && n > limit {
		cleanup()
		return "", nil, errors.Errorf("数据集超过大小限制 %d 字节", limit)
	}
	return f.Name(), cleanup, nil
}
