package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"sentiment-lens/config"
	"sentiment-lens/pkg/model"

	"github.com/pkg/errors"
)

// TritonClassifier 通过 KServe v2 HTTP 推理协议调用部署在 Triton 上的情感模型
type TritonClassifier struct {
	cfg    *config.TritonConfig
	client *http.Client
}

type tritonRequest struct {
	Inputs  []tritonTensor `json:"inputs"`
	Outputs []tritonOutput `json:"outputs,omitempty"`
}

type tritonTensor struct {
	Name     string `json:"name"`
	Shape    []int  `json:"shape"`
	DataType string `json:"datatype"`
	Data     any    `json:"data"`
}

type tritonOutput struct {
	Name string `json:"name"`
}

type tritonResponse struct {
	ModelName    string               `json:"model_name"`
	ModelVersion string               `json:"model_version"`
	Outputs      []tritonOutputTensor `json:"outputs"`
}

type tritonOutputTensor struct {
	Name     string          `json:"name"`
	Shape    []int           `json:"shape"`
	DataType string          `json:"datatype"`
	Data     json.RawMessage `json:"data"`
}

func NewTritonClassifier(cfg *config.TritonConfig) (*TritonClassifier, error) {
	if cfg == nil || cfg.BaseURL == "" || cfg.Model == "" {
		return nil, errors.Wrap(model.ErrClassifierUnavailable, "triton 配置缺少 baseUrl 或 model")
	}
	return &TritonClassifier{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (t *TritonClassifier) Classify(ctx context.Context, text string) (Prediction, error) {
	preds, err := t.ClassifyBatch(ctx, []string{text})
	if err != nil {
		return Prediction{}, err
	}
	if preds[0].Err != nil {
		return Prediction{}, preds[0].Err
	}
	return preds[0], nil
}

func (t *TritonClassifier) ClassifyBatch(ctx context.Context, texts []string) ([]Prediction, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	outputs := []tritonOutput{{Name: t.cfg.ScoreOutput}}
	if len(t.cfg.Labels) == 0 {
		outputs = append(outputs, tritonOutput{Name: t.cfg.LabelOutput})
	}
	reqBody := tritonRequest{
		Inputs: []tritonTensor{{
			Name:     t.cfg.InputName,
			Shape:    []int{len(texts), 1},
			DataType: "BYTES",
			Data:     texts,
		}},
		Outputs: outputs,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, errors.Wrap(err, "序列化 triton 请求失败")
	}

	url := fmt.Sprintf("%s/v2/models/%s/infer", strings.TrimRight(t.cfg.BaseURL, "/"), t.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "创建 triton 请求失败")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "调用 triton 失败")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, errors.Errorf("triton error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var tritonResp tritonResponse
	if err := json.NewDecoder(resp.Body).Decode(&tritonResp); err != nil {
		return nil, errors.Wrap(err, "解析 triton 响应失败")
	}
	return t.decode(&tritonResp, len(texts))
}

func (t *TritonClassifier) decode(resp *tritonResponse, n int) ([]Prediction, error) {
	var scoreTensor, labelTensor *tritonOutputTensor
	for i := range resp.Outputs {
		switch resp.Outputs[i].Name {
		case t.cfg.ScoreOutput:
			scoreTensor = &resp.Outputs[i]
		case t.cfg.LabelOutput:
			labelTensor = &resp.Outputs[i]
		}
	}
	if scoreTensor == nil {
		return nil, errors.Errorf("triton 响应缺少输出 %s", t.cfg.ScoreOutput)
	}

	var scores []float64
	if err := json.Unmarshal(scoreTensor.Data, &scores); err != nil {
		return nil, errors.Wrapf(err, "解析输出 %s 失败", scoreTensor.Name)
	}

	// 概率向量：每行 len(labels) 个分数，取最大值
	if k := len(t.cfg.Labels); k > 0 {
		if len(scores) != n*k {
			return nil, errors.Errorf("triton 输出长度 %d 与期望 %d 不一致", len(scores), n*k)
		}
		preds := make([]Prediction, n)
		for i := 0; i < n; i++ {
			row := scores[i*k : (i+1)*k]
			best := 0
			for j := 1; j < k; j++ {
				if row[j] > row[best] {
					best = j
				}
			}
			preds[i] = Prediction{Label: t.cfg.Labels[best], Score: row[best]}
		}
		return preds, nil
	}

	if labelTensor == nil {
		return nil, errors.Errorf("triton 响应缺少输出 %s", t.cfg.LabelOutput)
	}
	var labels []string
	if err := json.Unmarshal(labelTensor.Data, &labels); err != nil {
		return nil, errors.Wrapf(err, "解析输出 %s 失败", labelTensor.Name)
	}
	if len(labels) != n || len(scores) != n {
		return nil, errors.Errorf("triton 返回 %d 个标签、%d 个分数，期望 %d", len(labels), len(scores), n)
	}
	preds := make([]Prediction, n)
	for i := range preds {
		preds[i] = Prediction{Label: labels[i], Score: scores[i]}
	}
	return preds, nil
}
