package repository

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/quietfold/the-journal/internal/cache"
	"github.com/quietfold/the-journal/internal/config"
	"github.com/quietfold/the-journal/internal/model"
)

// s3ReloadInterval is how often the bucket is re-listed for changes.
const s3ReloadInterval = time.Minute

type S3PostRepository struct { // implements PostRepository
	client *s3.Client
	bucket string

	mu    sync.RWMutex
	posts []model.Post

	postsBySlug *cache.Cache[model.Slug, *model.Post]

	reloadNotifier func(model.Slug)
	stopReload     chan struct{}
}

func NewS3PostRepository(accessKeyID, accessKeySecret, bucket, baseEndpoint string) (*S3PostRepository, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, accessKeySecret, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("error initializing S3 client: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if baseEndpoint != "" {
			o.BaseEndpoint = aws.String(baseEndpoint)
		}
	})

	return &S3PostRepository{
		client:      client,
		bucket:      bucket,
		postsBySlug: cache.NewCache[model.Slug, *model.Post](),
		stopReload:  make(chan struct{}),
	}, nil
}

func (r *S3PostRepository) SetReloadNotifier(notifier func(model.Slug)) {
	r.reloadNotifier = notifier
}

func (r *S3PostRepository) notifyPostReload(slug model.Slug) {
	if r.reloadNotifier != nil {
		r.reloadNotifier(slug)
	}
}

func (r *S3PostRepository) Init() error {
	posts, postMap, err := r.loadPosts(context.TODO())
	if err != nil {
		return fmt.Errorf("error loading posts from bucket %s: %w", r.bucket, err)
	}

	r.mu.Lock()
	r.posts = posts
	r.mu.Unlock()
	r.postsBySlug.SetTo(postMap)

	go r.reloadLoop()
	return nil
}

func (r *S3PostRepository) List() []model.Post {
	r.mu.RLock()
	posts := r.posts
	r.mu.RUnlock()

	return SelectPosts(posts, config.ShowDrafts())
}

func (r *S3PostRepository) Get(slug model.Slug) (*model.Post, error) {
	if post, ok := r.postsBySlug.Get(slug); ok {
		return post, nil
	}
	return nil, fmt.Errorf("post not found: %s", slug)
}

func (r *S3PostRepository) Close() error {
	close(r.stopReload)
	return nil
}

func (r *S3PostRepository) loadPosts(ctx context.Context) ([]model.Post, map[model.Slug]*model.Post, error) {
	var posts []model.Post
	postMap := make(map[model.Slug]*model.Post)

	paginator := s3.NewListObjectsV2Paginator(r.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(r.bucket),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("error listing bucket %s: %w", r.bucket, err)
		}

		for _, object := range page.Contents {
			key := aws.ToString(object.Key)
			if !strings.HasSuffix(key, ".md") {
				continue
			}

			mdContent, err := r.readObject(ctx, key)
			if err != nil {
				return nil, nil, err
			}

			modified := time.Time{}
			if object.LastModified != nil {
				modified = *object.LastModified
			}

			slug := model.Slug(strings.TrimSuffix(key, ".md"))
			post, err := parsePost(slug, mdContent, modified)
			if err != nil {
				return nil, nil, err
			}

			posts = append(posts, post)
			postMap[slug] = &post
		}
	}

	return posts, postMap, nil
}

func (r *S3PostRepository) readObject(ctx context.Context, key string) ([]byte, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("error reading object %s: %w", key, err)
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

func (r *S3PostRepository) reloadLoop() {
	ticker := time.NewTicker(s3ReloadInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.reload()
		case <-r.stopReload:
			return
		}
	}
}

func (r *S3PostRepository) reload() {
	posts, postMap, err := r.loadPosts(context.TODO())
	if err != nil {
		repoLogger.Error().Err(err).Msg("Error reloading posts")
		return
	}

	r.mu.Lock()
	previous := r.posts
	r.posts = posts
	r.mu.Unlock()

	for _, post := range previous {
		if newPost, ok := postMap[post.Slug]; ok {
			if newPost.MDContentHash != post.MDContentHash {
				repoLogger.Info().
					Str("slug", string(post.Slug)).
					Str("title", post.Title).
					Msg("Reloading post")
				go r.notifyPostReload(post.Slug)
			}
		}
	}

	r.postsBySlug.SetTo(postMap)
}
