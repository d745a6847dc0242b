package figma

import (
	"encoding/json"
	"strconv"
	"time"
)

// User represents a Figma user as embedded in files, comments and components.
type User struct {
	ID     string `json:"id"               yaml:"id"`
	Handle string `json:"handle"           yaml:"handle"`
	ImgURL string `json:"img_url"          yaml:"img_url"`
	Email  string `json:"email,omitempty"  yaml:"email,omitempty"`
}

// File represents a Figma file document.
type File struct {
	Name          string                  `json:"name"                    yaml:"name"`
	Role          string                  `json:"role"                    yaml:"role"`
	LastModified  time.Time               `json:"lastModified"            yaml:"last_modified"`
	EditorType    string                  `json:"editorType"              yaml:"editor_type"`
	ThumbnailURL  string                  `json:"thumbnailUrl,omitempty"  yaml:"thumbnail_url,omitempty"`
	Version       string                  `json:"version"                 yaml:"version"`
	SchemaVersion int                     `json:"schemaVersion"           yaml:"schema_version"`
	Document      json.RawMessage         `json:"document"                yaml:"-"`
	Components    map[string]Component    `json:"components,omitempty"    yaml:"components,omitempty"`
	ComponentSets map[string]ComponentSet `json:"componentSets,omitempty" yaml:"component_sets,omitempty"`
	Styles        map[string]Style        `json:"styles,omitempty"        yaml:"styles,omitempty"`
}

// Component is the component metadata embedded in a file.
type Component struct {
	Key            string `json:"key"                      yaml:"key"`
	Name           string `json:"name"                     yaml:"name"`
	Description    string `json:"description"              yaml:"description"`
	ComponentSetID string `json:"componentSetId,omitempty" yaml:"component_set_id,omitempty"`
	Remote         bool   `json:"remote"                   yaml:"remote"`
}

// ComponentSet is the component set metadata embedded in a file.
type ComponentSet struct {
	Key         string `json:"key"         yaml:"key"`
	Name        string `json:"name"        yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// Style is the style metadata embedded in a file.
type Style struct {
	Key         string `json:"key"         yaml:"key"`
	Name        string `json:"name"        yaml:"name"`
	StyleType   string `json:"styleType"   yaml:"style_type"`
	Description string `json:"description" yaml:"description"`
	Remote      bool   `json:"remote"      yaml:"remote"`
}

// GetFileParams are the optional query parameters of file reads.
type GetFileParams struct {
	Version    string
	Depth      int
	Geometry   string
	PluginData string
	BranchData bool
}

// ToParams converts the parameters to a request params map.
func (p *GetFileParams) ToParams() map[string]any {
	params := map[string]any{}
	if p == nil {
		return params
	}

	if p.Version != "" {
		params["version"] = p.Version
	}

	if p.Depth > 0 {
		params["depth"] = p.Depth
	}

	if p.Geometry != "" {
		params["geometry"] = p.Geometry
	}

	if p.PluginData != "" {
		params["plugin_data"] = p.PluginData
	}

	if p.BranchData {
		params["branch_data"] = true
	}

	return params
}

// FileNodes is the response of GET /v1/files/:key/nodes.
type FileNodes struct {
	Name         string              `json:"name"         yaml:"name"`
	LastModified time.Time           `json:"lastModified" yaml:"last_modified"`
	Version      string              `json:"version"      yaml:"version"`
	Nodes        map[string]FileNode `json:"nodes"        yaml:"nodes"`
}

// FileNode is one requested node with its subtree.
type FileNode struct {
	Document   json.RawMessage      `json:"document"             yaml:"-"`
	Components map[string]Component `json:"components,omitempty" yaml:"components,omitempty"`
	Styles     map[string]Style     `json:"styles,omitempty"     yaml:"styles,omitempty"`
}

// ImageParams configures a render request.
type ImageParams struct {
	IDs    []string
	Scale  float64
	Format string
}

// ToParams converts the parameters to a request params map.
func (p *ImageParams) ToParams() map[string]any {
	params := map[string]any{}
	if p == nil {
		return params
	}

	if len(p.IDs) > 0 {
		params["ids"] = p.IDs
	}

	if p.Scale > 0 {
		params["scale"] = p.Scale
	}

	if p.Format != "" {
		params["format"] = p.Format
	}

	return params
}

// Images maps node IDs to rendered image URLs. A nil URL means the node
// could not be rendered.
type Images struct {
	Err    *string            `json:"err"    yaml:"err"`
	Images map[string]*string `json:"images" yaml:"images"`
}

// Version is one entry of a file's version history.
type Version struct {
	ID          string    `json:"id"          yaml:"id"`
	CreatedAt   time.Time `json:"created_at"  yaml:"created_at"`
	Label       string    `json:"label"       yaml:"label"`
	Description string    `json:"description" yaml:"description"`
	User        User      `json:"user"        yaml:"user"`
}

// Comment represents a comment on a file.
type Comment struct {
	ID         string          `json:"id"                    yaml:"id"`
	FileKey    string          `json:"file_key"              yaml:"file_key"`
	ParentID   string          `json:"parent_id,omitempty"   yaml:"parent_id,omitempty"`
	User       User            `json:"user"                  yaml:"user"`
	CreatedAt  time.Time       `json:"created_at"            yaml:"created_at"`
	ResolvedAt *time.Time      `json:"resolved_at,omitempty" yaml:"resolved_at,omitempty"`
	Message    string          `json:"message"               yaml:"message"`
	OrderID    string          `json:"order_id,omitempty"    yaml:"order_id,omitempty"`
	ClientMeta json.RawMessage `json:"client_meta,omitempty" yaml:"-"`
}

// CommentCreateRequest posts a comment or a reply when CommentID is set.
type CommentCreateRequest struct {
	Message    string `json:"message"               yaml:"message"`
	CommentID  string `json:"comment_id,omitempty"  yaml:"comment_id,omitempty"`
	ClientMeta any    `json:"client_meta,omitempty" yaml:"client_meta,omitempty"`
}

// Project represents a team project.
type Project struct {
	ID   string `json:"id"   yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// UnmarshalJSON accepts numeric project IDs.
func (p *Project) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID   json.Number `json:"id"`
		Name string      `json:"name"`
	}

	err := json.Unmarshal(data, &raw)
	if err != nil {
		var str struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		}

		err = json.Unmarshal(data, &str)
		if err != nil {
			return err
		}

		p.ID, p.Name = str.ID, str.Name

		return nil
	}

	p.ID, p.Name = raw.ID.String(), raw.Name

	return nil
}

// TeamProjects is the response of GET /v1/teams/:team_id/projects.
type TeamProjects struct {
	Name     string    `json:"name"     yaml:"name"`
	Projects []Project `json:"projects" yaml:"projects"`
}

// ProjectFile is a file listed in a project.
type ProjectFile struct {
	Key          string    `json:"key"           yaml:"key"`
	Name         string    `json:"name"          yaml:"name"`
	ThumbnailURL string    `json:"thumbnail_url" yaml:"thumbnail_url"`
	LastModified time.Time `json:"last_modified" yaml:"last_modified"`
}

// ProjectFiles is the response of GET /v1/projects/:project_id/files.
type ProjectFiles struct {
	Name  string        `json:"name"  yaml:"name"`
	Files []ProjectFile `json:"files" yaml:"files"`
}

// FrameInfo locates a published component inside its file.
type FrameInfo struct {
	NodeID   string `json:"nodeId,omitempty"   yaml:"node_id,omitempty"`
	Name     string `json:"name,omitempty"     yaml:"name,omitempty"`
	PageID   string `json:"pageId,omitempty"   yaml:"page_id,omitempty"`
	PageName string `json:"pageName,omitempty" yaml:"page_name,omitempty"`
}

// PublishedComponent is a component or component set published to a team library.
type PublishedComponent struct {
	Key             string     `json:"key"                        yaml:"key"`
	FileKey         string     `json:"file_key"                   yaml:"file_key"`
	NodeID          string     `json:"node_id"                    yaml:"node_id"`
	ThumbnailURL    string     `json:"thumbnail_url,omitempty"    yaml:"thumbnail_url,omitempty"`
	Name            string     `json:"name"                       yaml:"name"`
	Description     string     `json:"description"                yaml:"description"`
	CreatedAt       time.Time  `json:"created_at"                 yaml:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"                 yaml:"updated_at"`
	User            User       `json:"user"                       yaml:"user"`
	ContainingFrame *FrameInfo `json:"containing_frame,omitempty" yaml:"containing_frame,omitempty"`
}

// PublishedStyle is a style published to a team library.
type PublishedStyle struct {
	Key          string    `json:"key"                     yaml:"key"`
	FileKey      string    `json:"file_key"                yaml:"file_key"`
	NodeID       string    `json:"node_id"                 yaml:"node_id"`
	StyleType    string    `json:"style_type"              yaml:"style_type"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty" yaml:"thumbnail_url,omitempty"`
	Name         string    `json:"name"                    yaml:"name"`
	Description  string    `json:"description"             yaml:"description"`
	CreatedAt    time.Time `json:"created_at"              yaml:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"              yaml:"updated_at"`
	User         User      `json:"user"                    yaml:"user"`
	SortPosition string    `json:"sort_position,omitempty" yaml:"sort_position,omitempty"`
}

// PageCursor is the before/after cursor pair returned by library endpoints.
type PageCursor struct {
	Before int `json:"before,omitempty" yaml:"before,omitempty"`
	After  int `json:"after,omitempty"  yaml:"after,omitempty"`
}

// PageParams selects one page of a library listing.
type PageParams struct {
	PageSize int
	After    int
	Before   int
}

// ToParams converts the parameters to a request params map.
func (p *PageParams) ToParams() map[string]any {
	params := map[string]any{}
	if p == nil {
		return params
	}

	if p.PageSize > 0 {
		params["page_size"] = p.PageSize
	}

	if p.After > 0 {
		params["after"] = strconv.Itoa(p.After)
	}

	if p.Before > 0 {
		params["before"] = strconv.Itoa(p.Before)
	}

	return params
}

// ComponentsPage is one page of published components.
type ComponentsPage struct {
	Components []PublishedComponent `json:"components" yaml:"components"`
	Cursor     *PageCursor          `json:"cursor"     yaml:"cursor"`
}

// Variable is a local variable of a file.
type Variable struct {
	ID                   string                     `json:"id"                   yaml:"id"`
	Name                 string                     `json:"name"                 yaml:"name"`
	Key                  string                     `json:"key"                  yaml:"key"`
	VariableCollectionID string                     `json:"variableCollectionId" yaml:"variable_collection_id"`
	ResolvedType         string                     `json:"resolvedType"         yaml:"resolved_type"`
	ValuesByMode         map[string]json.RawMessage `json:"valuesByMode"         yaml:"-"`
	Remote               bool                       `json:"remote"               yaml:"remote"`
	Description          string                     `json:"description"          yaml:"description"`
	HiddenFromPublishing bool                       `json:"hiddenFromPublishing" yaml:"hidden_from_publishing"`
	Scopes               []string                   `json:"scopes"               yaml:"scopes"`
}

// VariableMode is one mode of a collection.
type VariableMode struct {
	ModeID string `json:"modeId" yaml:"mode_id"`
	Name   string `json:"name"   yaml:"name"`
}

// VariableCollection groups variables sharing modes.
type VariableCollection struct {
	ID                   string         `json:"id"                   yaml:"id"`
	Name                 string         `json:"name"                 yaml:"name"`
	Key                  string         `json:"key"                  yaml:"key"`
	Modes                []VariableMode `json:"modes"                yaml:"modes"`
	DefaultModeID        string         `json:"defaultModeId"        yaml:"default_mode_id"`
	Remote               bool           `json:"remote"               yaml:"remote"`
	HiddenFromPublishing bool           `json:"hiddenFromPublishing" yaml:"hidden_from_publishing"`
	VariableIDs          []string       `json:"variableIds"          yaml:"variable_ids"`
}

// LocalVariables is the meta of GET /v1/files/:key/variables/local.
type LocalVariables struct {
	Variables           map[string]Variable           `json:"variables"           yaml:"variables"`
	VariableCollections map[string]VariableCollection `json:"variableCollections" yaml:"variable_collections"`
}

// PublishedVariable is a variable published from a library file.
type PublishedVariable struct {
	ID                   string    `json:"id"                   yaml:"id"`
	SubscribedID         string    `json:"subscribed_id"        yaml:"subscribed_id"`
	Name                 string    `json:"name"                 yaml:"name"`
	Key                  string    `json:"key"                  yaml:"key"`
	VariableCollectionID string    `json:"variableCollectionId" yaml:"variable_collection_id"`
	ResolvedDataType     string    `json:"resolvedDataType"     yaml:"resolved_data_type"`
	UpdatedAt            time.Time `json:"updatedAt"            yaml:"updated_at"`
}

// PublishedVariableCollection is a collection published from a library file.
type PublishedVariableCollection struct {
	ID           string    `json:"id"            yaml:"id"`
	SubscribedID string    `json:"subscribed_id" yaml:"subscribed_id"`
	Name         string    `json:"name"          yaml:"name"`
	Key          string    `json:"key"           yaml:"key"`
	UpdatedAt    time.Time `json:"updatedAt"     yaml:"updated_at"`
}

// PublishedVariables is the meta of GET /v1/files/:key/variables/published.
type PublishedVariables struct {
	Variables           map[string]PublishedVariable           `json:"variables"           yaml:"variables"`
	VariableCollections map[string]PublishedVariableCollection `json:"variableCollections" yaml:"variable_collections"`
}

// VariableChange is one create/update/delete entry of a bulk variables change.
// Fields beyond Action and ID depend on the entity and are sent as given.
type VariableChange struct {
	Action string         `json:"action"       yaml:"action"`
	ID     string         `json:"id,omitempty" yaml:"id,omitempty"`
	Fields map[string]any `json:"-"            yaml:"fields,omitempty"`
}

// MarshalJSON flattens Fields next to action and id.
func (c VariableChange) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Fields)+2)
	for k, v := range c.Fields {
		out[k] = v
	}

	out["action"] = c.Action
	if c.ID != "" {
		out["id"] = c.ID
	}

	return json.Marshal(out)
}

// VariableModeValue sets the value of a variable in one mode.
type VariableModeValue struct {
	VariableID string `json:"variableId" yaml:"variable_id"`
	ModeID     string `json:"modeId"     yaml:"mode_id"`
	Value      any    `json:"value"      yaml:"value"`
}

// VariablesUpdateRequest is the body of POST /v1/files/:key/variables.
type VariablesUpdateRequest struct {
	VariableCollections []VariableChange    `json:"variableCollections,omitempty" yaml:"variable_collections,omitempty"`
	VariableModes       []VariableChange    `json:"variableModes,omitempty"       yaml:"variable_modes,omitempty"`
	Variables           []VariableChange    `json:"variables,omitempty"           yaml:"variables,omitempty"`
	VariableModeValues  []VariableModeValue `json:"variableModeValues,omitempty"  yaml:"variable_mode_values,omitempty"`
}

// VariablesUpdateResult maps temporary IDs in the request to created IDs.
type VariablesUpdateResult struct {
	TempIDToRealID map[string]string `json:"tempIdToRealId" yaml:"temp_id_to_real_id"`
}

// Webhook represents a team webhook.
type Webhook struct {
	ID          string `json:"id"                    yaml:"id"`
	EventType   string `json:"event_type"            yaml:"event_type"`
	TeamID      string `json:"team_id"               yaml:"team_id"`
	Status      string `json:"status"                yaml:"status"`
	ClientID    string `json:"client_id,omitempty"   yaml:"client_id,omitempty"`
	Passcode    string `json:"passcode,omitempty"    yaml:"passcode,omitempty"`
	Endpoint    string `json:"endpoint"              yaml:"endpoint"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// WebhookCreateRequest is the body of POST /v2/webhooks.
type WebhookCreateRequest struct {
	EventType   string `json:"event_type"            yaml:"event_type"`
	TeamID      string `json:"team_id"               yaml:"team_id"`
	Endpoint    string `json:"endpoint"              yaml:"endpoint"`
	Passcode    string `json:"passcode"              yaml:"passcode"`
	Status      string `json:"status,omitempty"      yaml:"status,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// WebhookUpdateRequest is the body of PUT /v2/webhooks/:id.
type WebhookUpdateRequest struct {
	EventType   string `json:"event_type,omitempty"  yaml:"event_type,omitempty"`
	Endpoint    string `json:"endpoint,omitempty"    yaml:"endpoint,omitempty"`
	Passcode    string `json:"passcode,omitempty"    yaml:"passcode,omitempty"`
	Status      string `json:"status,omitempty"      yaml:"status,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// WebhookRequest is one delivery attempt of a webhook.
type WebhookRequest struct {
	WebhookID    string               `json:"webhook_id"              yaml:"webhook_id"`
	RequestInfo  WebhookRequestInfo   `json:"request_info"            yaml:"request_info"`
	ResponseInfo *WebhookResponseInfo `json:"response_info,omitempty" yaml:"response_info,omitempty"`
	Error        string               `json:"error_msg,omitempty"     yaml:"error,omitempty"`
}

// WebhookRequestInfo describes the outgoing delivery.
type WebhookRequestInfo struct {
	ID       string          `json:"id"       yaml:"id"`
	Endpoint string          `json:"endpoint" yaml:"endpoint"`
	Payload  json.RawMessage `json:"payload"  yaml:"-"`
	SentAt   time.Time       `json:"sent_at"  yaml:"sent_at"`
}

// WebhookResponseInfo describes the receiver's answer.
type WebhookResponseInfo struct {
	Status     string    `json:"status"      yaml:"status"`
	ReceivedAt time.Time `json:"received_at" yaml:"received_at"`
}

// AnalyticsParams filters library analytics queries.
type AnalyticsParams struct {
	// GroupBy is required by the API, e.g. "component" or "team".
	GroupBy   string
	StartDate string
	EndDate   string
}

// ToParams converts the parameters to a request params map.
func (p *AnalyticsParams) ToParams() map[string]any {
	params := map[string]any{}
	if p == nil {
		return params
	}

	if p.GroupBy != "" {
		params["group_by"] = p.GroupBy
	}

	if p.StartDate != "" {
		params["start_date"] = p.StartDate
	}

	if p.EndDate != "" {
		params["end_date"] = p.EndDate
	}

	return params
}

// AnalyticsRow is one row of a library analytics report. Which name and key
// fields are set depends on the report and the grouping.
type AnalyticsRow struct {
	Week             string `json:"week,omitempty"               yaml:"week,omitempty"`
	ComponentKey     string `json:"component_key,omitempty"      yaml:"component_key,omitempty"`
	ComponentName    string `json:"component_name,omitempty"     yaml:"component_name,omitempty"`
	ComponentSetKey  string `json:"component_set_key,omitempty"  yaml:"component_set_key,omitempty"`
	ComponentSetName string `json:"component_set_name,omitempty" yaml:"component_set_name,omitempty"`
	StyleKey         string `json:"style_key,omitempty"          yaml:"style_key,omitempty"`
	StyleName        string `json:"style_name,omitempty"         yaml:"style_name,omitempty"`
	StyleType        string `json:"style_type,omitempty"         yaml:"style_type,omitempty"`
	VariableKey      string `json:"variable_key,omitempty"       yaml:"variable_key,omitempty"`
	VariableName     string `json:"variable_name,omitempty"      yaml:"variable_name,omitempty"`
	VariableType     string `json:"variable_type,omitempty"      yaml:"variable_type,omitempty"`
	CollectionKey    string `json:"collection_key,omitempty"     yaml:"collection_key,omitempty"`
	CollectionName   string `json:"collection_name,omitempty"    yaml:"collection_name,omitempty"`
	TeamName         string `json:"team_name,omitempty"          yaml:"team_name,omitempty"`
	WorkspaceName    string `json:"workspace_name,omitempty"     yaml:"workspace_name,omitempty"`
	Detachments      int    `json:"detachments,omitempty"        yaml:"detachments,omitempty"`
	Insertions       int    `json:"insertions,omitempty"         yaml:"insertions,omitempty"`
	Usages           int    `json:"usages,omitempty"             yaml:"usages,omitempty"`
	TeamsUsing       int    `json:"teams_using,omitempty"        yaml:"teams_using,omitempty"`
	FilesUsing       int    `json:"files_using,omitempty"        yaml:"files_using,omitempty"`
}
